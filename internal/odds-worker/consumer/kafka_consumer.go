package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/odds-worker/cache"
	"github.com/crickpool/crickpool/internal/odds-worker/calculator"
	"github.com/crickpool/crickpool/internal/odds-worker/repository"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// Processor consome mutações de aposta do Kafka, recalcula os pools da
// partida no banco e materializa as odds correntes no cache Redis.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase

	// Após atualizar o cache, envia o update para o WebSocket via Redis Pub/Sub
	OnAfterCompute func(events.OddsUpdate)
}

// Run inicia o loop principal de consumo e recálculo de odds
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
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

		var ev events.BetEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		upd, err := p.recompute(ctx, ev.MatchID)
		if err != nil {
			p.Log.Warn("pools recompute failed", zap.String("match_id", ev.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_pools")
			}
			continue
		}

		if err := p.Cache.SetCurrent(ctx, upd); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// broadcast segue mesmo com cache falho; leitura cai no banco
		} else if p.OnCached != nil {
			p.OnCached()
		}

		if p.OnAfterCompute != nil {
			p.OnAfterCompute(upd)
		}
	}
}

// recompute soma os pools no banco e deriva as odds correntes.
// O version vem de um INCR no Redis pra consumidores descartarem updates velhos.
func (p *Processor) recompute(ctx context.Context, matchID string) (events.OddsUpdate, error) {
	home, away, pools, err := p.Repo.MatchPools(ctx, matchID)
	if err != nil {
		return events.OddsUpdate{}, err
	}

	odds := calculator.Compute(pools)

	version, err := p.Cache.Client.Incr(ctx, "odds:version:"+matchID).Result()
	if err != nil {
		version = time.Now().UnixMilli() // fallback: ainda monotônico o suficiente
	}

	return events.OddsUpdate{
		MatchID:       matchID,
		HomeTeamID:    home,
		AwayTeamID:    away,
		PoolHome:      pools.Home,
		PoolAway:      pools.Away,
		OddsHome:      odds.Home,
		OddsAway:      odds.Away,
		HomeAvailable: odds.HomeAvailable,
		AwayAvailable: odds.AwayAvailable,
		Version:       version,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}
