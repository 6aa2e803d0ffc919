package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wtfmahe/PeeP/internal/models"
)

const (
	statusKeyPrefix = "status:"
	// Two broadcast intervals: a client that stopped broadcasting drops out of
	// the cache and reads fall through to Postgres.
	DefaultStatusTTL = 60 * time.Second
)

type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &RedisStatusCache{client: client, ttl: ttl}
}

func (c *RedisStatusCache) Set(ctx context.Context, status *models.UserStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := c.client.Set(ctx, statusKey(status.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache status: %w", err)
	}
	return nil
}

func (c *RedisStatusCache) Get(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error) {
	data, err := c.client.Get(ctx, statusKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached status: %w", err)
	}

	var status models.UserStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}

func (c *RedisStatusCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached status: %w", err)
	}
	return nil
}

func statusKey(userID uuid.UUID) string {
	return statusKeyPrefix + userID.String()
}
