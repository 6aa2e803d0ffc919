package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RedisDialTimeout = 5 * time.Second
	RedisMinIdle     = 2
)

// NewRedisClient connects to redisURL with poolSize connections. Pub/sub
// feeds hold their own connection outside the pool.
func NewRedisClient(ctx context.Context, redisURL string, poolSize int) (*redis.Client, error) {
	opts, err := redisOptions(redisURL, poolSize)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	slog.Info("redis client created", "addr", opts.Addr, "pool_size", opts.PoolSize)

	return client, nil
}

func redisOptions(redisURL string, poolSize int) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	opts.MinIdleConns = RedisMinIdle
	opts.DialTimeout = RedisDialTimeout
	return opts, nil
}
