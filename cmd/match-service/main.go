package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	mhttp "github.com/crickpool/crickpool/internal/match-service/http"
	"github.com/crickpool/crickpool/internal/match-service/producer"
	"github.com/crickpool/crickpool/internal/match-service/repo"
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

	// Kafka, um writer por tópico de ciclo de vida
	publ := &producer.KafkaPublisher{
		LockedWriter:    kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchLocked),
		FinalizedWriter: kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinalized),
		StatsWriter:     kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicStatsEntered),
	}
	defer publ.LockedWriter.Close()
	defer publ.FinalizedWriter.Close()
	defer publ.StatsWriter.Close()

	repository := repo.NewPostgres(pg)

	// HTTP administrativo
	api := mhttp.NewServer(log, repository, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("match-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
