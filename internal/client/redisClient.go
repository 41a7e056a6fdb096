package client

import (
	"context"
	"fmt"

	"books-storefront/internal/config"

	"github.com/redis/go-redis/v9"
)

// InitRedisClient connects to redis when an address is configured. A nil client means redis is off.
func InitRedisClient(ctx context.Context, redisCfg *config.Redis) (*redis.Client, error) {
	if redisCfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", redisCfg.Addr, err)
	}
	return rdb, nil
}
