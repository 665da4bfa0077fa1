package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/odds-worker/cache"
	"github.com/crickpool/crickpool/internal/odds-worker/consumer"
	"github.com/crickpool/crickpool/internal/odds-worker/pubsub"
	"github.com/crickpool/crickpool/internal/odds-worker/repository"
	sharedcache "github.com/crickpool/crickpool/internal/shared/cache"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/db"
	"github.com/crickpool/crickpool/internal/shared/kafka"
	"github.com/crickpool/crickpool/internal/shared/logger"
	"github.com/crickpool/crickpool/internal/shared/metrics"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka (consumer group odds-worker)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetEvents, "odds-worker")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_worker_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_worker_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, errorsBy)

	// Broadcaster para publicar odds no Redis Pub/Sub (usado pelo odds-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	proc := &consumer.Processor{
		Log:    log,
		Reader: reader,
		Repo:   repo,
		Cache:  rcache,

		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		OnAfterCompute: func(upd events.OddsUpdate) {
			msg := pubsub.WSUpdate{MatchID: upd.MatchID, Payload: upd}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, pubsub.ChannelOddsBroadcast, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("odds-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("odds-worker stopped")
}
