package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL curto: o ranking muda a cada liquidação, não a cada request
const leaderboardTTL = 30 * time.Second

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyTop(limit int) string { return "fantasy:leaderboard:top:" + strconv.Itoa(limit) }

func (c *Cache) GetLeaderboard(ctx context.Context, limit int, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyTop(limit)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetLeaderboard(ctx context.Context, limit int, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyTop(limit), b, leaderboardTTL).Err()
}
