package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// RedisCache encapsula o cache de odds correntes no Redis
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis das odds correntes de uma partida
func key(matchID string) string { return "odds:current:" + matchID }

// SetCurrent armazena as odds correntes de uma partida com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, e events.OddsUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(e.MatchID), b, r.TTL).Err()
}
