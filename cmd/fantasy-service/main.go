package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	fcache "github.com/crickpool/crickpool/internal/fantasy-service/cache"
	fhttp "github.com/crickpool/crickpool/internal/fantasy-service/http"
	"github.com/crickpool/crickpool/internal/fantasy-service/repo"
	scache "github.com/crickpool/crickpool/internal/shared/cache"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/db"
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

	// Redis (cache do leaderboard)
	rdb, err := scache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	repository := repo.NewPostgres(pg)
	lb := fcache.New(rdb)

	api := fhttp.NewServer(log, repository, lb)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("fantasy-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
