package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobletter:seen:"

// RedisCache is a Cache backed by Redis, for deployments where several
// acquisition processes share one dedup horizon. Entries carry the retention
// window as their TTL, so Redis handles eviction itself.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCache parses redisURL, verifies connectivity and returns the cache.
func NewRedisCache(ctx context.Context, redisURL string, retention time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{client: client, retention: retention}, nil
}

func (c *RedisCache) Has(ctx context.Context, fingerprint string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("checking fingerprint %s: %w", fingerprint, err)
	}
	return n > 0, nil
}

// Record stores the fingerprint with SetNX so an existing entry keeps its
// original TTL (first-seen is never refreshed).
func (c *RedisCache) Record(ctx context.Context, fingerprint string) error {
	if err := c.client.SetNX(ctx, redisKeyPrefix+fingerprint, 1, c.retention).Err(); err != nil {
		return fmt.Errorf("recording fingerprint %s: %w", fingerprint, err)
	}
	return nil
}

// Sweep is a no-op: Redis evicts expired keys on its own.
func (c *RedisCache) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
