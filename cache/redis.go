package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by Get when no document is cached under the name.
var ErrCacheMiss = errors.New("cache miss")

// DocumentCache holds serialized collection documents keyed by collection name.
type DocumentCache interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

const keyPrefix = "musicflow:doc:"

// RedisDocumentCache is a DocumentCache backed by Redis string keys.
type RedisDocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDocumentCache connects to Redis and verifies the connection.
func NewRedisDocumentCache(addr, password string, db int, ttl time.Duration) (*RedisDocumentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	c := &RedisDocumentCache{client: client, ttl: ttl}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return c, nil
}

// GetDocumentKey returns the Redis key for a collection document.
func GetDocumentKey(name string) string {
	return keyPrefix + name
}

func (c *RedisDocumentCache) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := c.client.Get(ctx, GetDocumentKey(name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached document %s: %w", name, err)
	}
	return data, nil
}

func (c *RedisDocumentCache) Set(ctx context.Context, name string, data []byte) error {
	if err := c.client.Set(ctx, GetDocumentKey(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document %s: %w", name, err)
	}
	return nil
}

func (c *RedisDocumentCache) Delete(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, GetDocumentKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to evict document %s: %w", name, err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisDocumentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisDocumentCache) Close() error {
	return c.client.Close()
}

// CheckRoundTrip writes, reads back and deletes a probe key.
func (c *RedisDocumentCache) CheckRoundTrip(ctx context.Context) error {
	const probe = "musicflow:probe"
	want := "redis connection successful"

	if err := c.client.Set(ctx, probe, want, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}
	got, err := c.client.Get(ctx, probe).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if got != want {
		return fmt.Errorf("unexpected value from Redis: got %s", got)
	}
	if err := c.client.Del(ctx, probe).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}
	return nil
}
