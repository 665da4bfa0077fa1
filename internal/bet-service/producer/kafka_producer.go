package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// KafkaPublisher publica mutações de aposta no tópico bet_events
type KafkaPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// PublishBetEvent usa o matchID como chave para manter ordem por partida
func (p *KafkaPublisher) PublishBetEvent(ctx context.Context, e events.BetEvent) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}
