package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/odds-service/cache"
	ohttp "github.com/crickpool/crickpool/internal/odds-service/http"
	"github.com/crickpool/crickpool/internal/odds-service/repo"
	"github.com/crickpool/crickpool/internal/odds-service/ws"
	sharedcache "github.com/crickpool/crickpool/internal/shared/cache"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/db"
	"github.com/crickpool/crickpool/internal/shared/logger"
	"github.com/crickpool/crickpool/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// API REST + hub WebSocket alimentado pelo Pub/Sub do odds-worker
	api := &ohttp.API{
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    cache.New(redisClient),
	}
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.HandleFunc("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	go func() {
		<-ctx.Done()
		_ = apiSrv.Shutdown(context.Background())
	}()

	log.Info("odds-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
