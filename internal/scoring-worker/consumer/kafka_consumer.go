package consumer

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/scoring-worker/repo"
	"github.com/crickpool/crickpool/internal/scoring-worker/resolver"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// Processor consome os três gatilhos de pontuação fantasy:
// match_locked gera as seleções automáticas, stats_entered e match_settled
// recalculam as pontuações por partida e os totais acumulados.
type Processor struct {
	Log           *zap.Logger
	LockedReader  *kafka.Reader
	StatsReader   *kafka.Reader
	SettledReader *kafka.Reader
	Repo          *repo.Postgres

	// Rng alimenta o sorteio de capitão do fallback; semeável em teste
	Rng *rand.Rand

	OnConsumed   func(topic string)
	OnAutoPicked func()
	OnRecomputed func()
	OnError      func(string)
}

// Run consome os três tópicos em paralelo até o contexto cancelar
func (p *Processor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		p.loop(ctx, p.LockedReader, "match_locked", p.handleLocked)
	}()
	go func() {
		defer wg.Done()
		p.loop(ctx, p.StatsReader, "stats_entered", p.handleRecompute)
	}()
	go func() {
		defer wg.Done()
		p.loop(ctx, p.SettledReader, "match_settled", p.handleRecompute)
	}()

	wg.Wait()
	return ctx.Err()
}

func (p *Processor) loop(ctx context.Context, r *kafka.Reader, topic string, handle func(context.Context, []byte) error) {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Log.Warn("kafka read failed", zap.String("topic", topic), zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed(topic)
		}
		if err := handle(ctx, m.Value); err != nil {
			p.Log.Error("handle failed", zap.String("topic", topic), zap.Error(err))
			if p.OnError != nil {
				p.OnError("handle")
			}
		}
	}
}

// handleLocked roda o fallback de seleção pra todos os usuários elegíveis
func (p *Processor) handleLocked(ctx context.Context, value []byte) error {
	var ev events.MatchLocked
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}

	cands, err := p.Repo.ListCandidates(ctx, ev.MatchID, ev.HomeTeamID, ev.AwayTeamID)
	if err != nil {
		return err
	}

	created := 0
	for _, c := range cands {
		sel, ok := resolver.Resolve(c, ev.HomeTeamID, ev.AwayTeamID, p.Rng)
		if !ok {
			continue
		}
		inserted, err := p.Repo.InsertAutoSelection(ctx, ev.MatchID, sel)
		if err != nil {
			return err
		}
		if inserted {
			created++
			if p.OnAutoPicked != nil {
				p.OnAutoPicked()
			}
		}
	}

	p.Log.Info("auto selections created",
		zap.String("match_id", ev.MatchID),
		zap.Int("candidates", len(cands)),
		zap.Int("created", created))
	return nil
}

// handleRecompute refaz as pontuações da partida. Serve tanto pra correção
// de estatística quanto pra liquidação; só o match_id interessa.
func (p *Processor) handleRecompute(ctx context.Context, value []byte) error {
	var ev struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}

	n, err := p.Repo.RecomputeMatchPoints(ctx, ev.MatchID)
	if err != nil {
		return err
	}
	if p.OnRecomputed != nil {
		p.OnRecomputed()
	}
	p.Log.Info("match points recomputed", zap.String("match_id", ev.MatchID), zap.Int("selections", n))
	return nil
}
