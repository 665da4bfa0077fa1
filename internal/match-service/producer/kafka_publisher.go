package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de ciclo de vida de partidas.
// Um writer por tópico, chave sempre o matchID pra manter ordem por partida.
type KafkaPublisher struct {
	LockedWriter    *kafka.Writer
	FinalizedWriter *kafka.Writer
	StatsWriter     *kafka.Writer
}

func (p *KafkaPublisher) PublishMatchLocked(ctx context.Context, e events.MatchLocked) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.LockedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}

func (p *KafkaPublisher) PublishMatchFinalized(ctx context.Context, e events.MatchFinalized) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.FinalizedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}

func (p *KafkaPublisher) PublishStatsEntered(ctx context.Context, e events.StatsEntered) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.StatsWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}
