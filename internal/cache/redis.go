package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// RedisKey is the slot key in Redis. It matches the browser storage key so
// both caches are easy to find side by side.
const RedisKey = "crm-seguidores-board"

// RedisCache keeps the serialized board under one Redis key.
type RedisCache struct {
	client *redis.Client
	key    string
}

var _ store.Cache = (*RedisCache)(nil)

// OpenRedis connects to redisURL and verifies the connection.
func OpenRedis(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client), nil
}

// NewRedisWithClient creates a cache from an existing Redis client.
func NewRedisWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, key: RedisKey}
}

// Load returns the cached board bytes.
func (c *RedisCache) Load(ctx context.Context) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cached board: %w", err)
	}
	return data, nil
}

// Save overwrites the slot. The entry never expires.
func (c *RedisCache) Save(ctx context.Context, data []byte) error {
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save cached board: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
