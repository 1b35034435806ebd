// Package cache is a thin JSON cache over Redis.
//
// A nil *Cache is a valid no-op cache, so code paths never have to branch on
// whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chefbazaar/backend/config"
	"github.com/chefbazaar/backend/pkg/metrics"
)

type Cache struct {
	rdb *redis.Client
}

// Connect builds a Cache over a new Redis client. Returns nil (a no-op
// cache) when the server is unreachable; the API works without Redis, just
// without the caching.
func Connect(ctx context.Context) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil
	}

	return &Cache{rdb: rdb}
}

// Get loads key into dest. Returns false on miss, decode failure, or when
// the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false
	}

	metrics.CacheHits.Inc()
	return true
}

// Set stores value under key with a TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Forget removes keys, used for write invalidation.
func (c *Cache) Forget(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() {
	if c != nil {
		_ = c.rdb.Close()
	}
}
