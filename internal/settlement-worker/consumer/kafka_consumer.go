package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/settlement-worker/payout"
	"github.com/crickpool/crickpool/internal/settlement-worker/repo"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// Processor consome match_finalized, liquida a partida e publica
// match_settled. Mensagens envenenadas (payload inválido ou mercado
// impossível) vão pra DLQ e o consumo segue.
type Processor struct {
	Log     *zap.Logger
	Reader  *kafka.Reader
	Repo    *repo.Postgres
	Settled *kafka.Writer
	DLQ     *kafka.Writer

	OnConsumed func()
	OnSettled  func()
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de liquidação
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.MatchFinalized
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MatchID == "" {
			p.Log.Warn("invalid match_finalized payload", zap.Error(err))
			p.toDLQ(ctx, m, "decode")
			continue
		}

		sum, err := p.settleWithRetry(ctx, ev)
		if err != nil {
			p.Log.Error("unsettleable match", zap.String("match_id", ev.MatchID), zap.Error(err))
			p.toDLQ(ctx, m, "settle")
			continue
		}

		if sum.AlreadySettled {
			p.Log.Info("match already settled, skipping", zap.String("match_id", ev.MatchID))
			continue
		}

		if p.OnSettled != nil {
			p.OnSettled()
		}
		p.Log.Info("match settled",
			zap.String("match_id", ev.MatchID),
			zap.Int("bets_paid", sum.BetsPaid),
			zap.Int64("total_paid", sum.TotalPaid))

		out := events.MatchSettled{
			MatchID:      ev.MatchID,
			ResultKind:   ev.ResultKind,
			WinnerTeamID: ev.WinnerTeamID,
			BetsPaid:     sum.BetsPaid,
			TotalPaid:    sum.TotalPaid,
			Ts:           time.Now().UTC(),
		}
		b, _ := json.Marshal(out)
		if err := p.Settled.WriteMessages(ctx, kafka.Message{Key: []byte(ev.MatchID), Value: b}); err != nil {
			p.Log.Error("publish match_settled", zap.String("match_id", ev.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("publish")
			}
		}
	}
}

// settleWithRetry tenta a liquidação algumas vezes antes de desistir.
// Erros permanentes (mercado de lado único, partida desconhecida) não retentam.
func (p *Processor) settleWithRetry(ctx context.Context, ev events.MatchFinalized) (repo.Summary, error) {
	const retries = 3
	var sum repo.Summary
	var err error
	for i := 0; i < retries; i++ {
		sum, err = p.Repo.SettleMatch(ctx, ev)
		if err == nil {
			return sum, nil
		}
		if errors.Is(err, payout.ErrUnbalancedMarket) || errors.Is(err, repo.ErrMatchNotFound) {
			return repo.Summary{}, err
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return repo.Summary{}, err
}

// toDLQ reencaminha a mensagem original pra fila morta com o estágio da falha
func (p *Processor) toDLQ(ctx context.Context, m kafka.Message, stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
	dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg := kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: append(m.Headers, kafka.Header{Key: "x-failure-stage", Value: []byte(stage)}),
	}
	if err := p.DLQ.WriteMessages(dctx, msg); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
	}
}
