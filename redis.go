package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// initRedis initializes the Redis connection
func initRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// cacheClient is the part of the Redis API the response cache uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// responseCache caches JSON responses per profile. A nil client disables
// caching.
type responseCache struct {
	client cacheClient
	logger *slog.Logger
}

func newResponseCache(client *redis.Client, logger *slog.Logger) *responseCache {
	c := &responseCache{logger: logger}
	if client != nil {
		c.client = client
	}
	return c
}

func cacheKey(kind, profile string) string {
	return kind + ":" + profile
}

// get decodes the cached value for key into dst and reports whether it
// was found.
func (c *responseCache) get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
		}
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (c *responseCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (c *responseCache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache invalidation failed", "keys", keys, "error", err)
	}
}
