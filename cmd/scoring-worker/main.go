package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/scoring-worker/consumer"
	"github.com/crickpool/crickpool/internal/scoring-worker/repo"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/db"
	"github.com/crickpool/crickpool/internal/shared/kafka"
	"github.com/crickpool/crickpool/internal/shared/logger"
	"github.com/crickpool/crickpool/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	lockedReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchLocked, "scoring-worker")
	defer lockedReader.Close()
	statsReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicStatsEntered, "scoring-worker")
	defer statsReader.Close()
	settledReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchSettled, "scoring-worker")
	defer settledReader.Close()

	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scoring_worker_messages_consumed_total", Help: "mensagens consumidas por tópico"}, []string{"topic"})
	autoPicked := prometheus.NewCounter(prometheus.CounterOpts{Name: "scoring_worker_auto_selections_total", Help: "seleções automáticas criadas"})
	recomputed := prometheus.NewCounter(prometheus.CounterOpts{Name: "scoring_worker_recomputes_total", Help: "recálculos de pontuação"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scoring_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, autoPicked, recomputed, errorsBy)

	// Semente opcional pra reproduzir o sorteio de capitão em ambiente local
	seed := time.Now().UnixNano()
	if s := os.Getenv("SCORING_RAND_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			seed = v
		}
	}

	proc := &consumer.Processor{
		Log:           log,
		LockedReader:  lockedReader,
		StatsReader:   statsReader,
		SettledReader: settledReader,
		Repo:          repo.NewPostgres(pg),
		Rng:           rand.New(rand.NewSource(seed)),

		OnConsumed:   func(topic string) { consumed.WithLabelValues(topic).Inc() },
		OnAutoPicked: func() { autoPicked.Inc() },
		OnRecomputed: func() { recomputed.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("scoring-worker started")
	if err := proc.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("scoring-worker stopped")
}
