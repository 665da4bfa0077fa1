package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis cria o cliente Redis e valida a conexão com ping.
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
