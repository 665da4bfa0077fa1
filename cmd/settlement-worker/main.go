package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/settlement-worker/consumer"
	"github.com/crickpool/crickpool/internal/settlement-worker/repo"
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

	// Consome match_finalized, publica match_settled, envenenadas vão pra DLQ
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchFinalized, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchSettled)
	defer settledWriter.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinalizedDLQ)
	defer dlqWriter.Close()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_worker_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_worker_matches_settled_total", Help: "partidas liquidadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	proc := &consumer.Processor{
		Log:     log,
		Reader:  reader,
		Repo:    repo.NewPostgres(pg),
		Settled: settledWriter,
		DLQ:     dlqWriter,

		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
