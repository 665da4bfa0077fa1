package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/bot-simulator/bot"
	"github.com/crickpool/crickpool/internal/shared/config"
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

	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_simulator_bets_placed_total", Help: "apostas de bot criadas"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_simulator_errors_total", Help: "falhas de bot"})
	prometheus.MustRegister(placed, failed)

	// BOT_USER_IDS precisa apontar pra usuários já criados no wallet-service
	userIDs := splitNonEmpty(os.Getenv("BOT_USER_IDS"))
	if len(userIDs) == 0 {
		log.Warn("no BOT_USER_IDS configured, bot will idle")
	}

	b := &bot.Bot{
		Log:     log,
		Client:  bot.DefaultClient(),
		OddsURL: cfg.OddsURL,
		BetURL:  cfg.BetURL,
		UserIDs: userIDs,
		Rng:     rand.New(rand.NewSource(time.Now().UnixNano())),

		OnPlaced: func() { placed.Inc() },
		OnError:  func() { failed.Inc() },
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.BotCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Tick(ctx)
	})
	if err != nil {
		log.Fatal("invalid cron spec", zap.String("spec", cfg.BotCronSpec), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bot-simulator started", zap.String("cron", cfg.BotCronSpec), zap.Int("bots", len(userIDs)))
	<-ctx.Done()
	log.Info("bot-simulator stopped")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
