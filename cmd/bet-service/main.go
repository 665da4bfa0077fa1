package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	bhttp "github.com/crickpool/crickpool/internal/bet-service/http"
	"github.com/crickpool/crickpool/internal/bet-service/odds"
	kpub "github.com/crickpool/crickpool/internal/bet-service/producer"
	"github.com/crickpool/crickpool/internal/bet-service/repo"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/db"
	"github.com/crickpool/crickpool/internal/shared/kafka"
	"github.com/crickpool/crickpool/internal/shared/logger"
	"github.com/crickpool/crickpool/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (leitura das odds correntes)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writer (tópico bet_events)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEvents)
	defer writer.Close()

	// deps
	repository := repo.NewPostgres(pg)
	oddsReader := odds.NewReader(rdb)
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetEvents)

	// HTTP público
	api := bhttp.NewServer(log, repository, oddsReader, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
