// Package cache stores JSON values in Redis. A cache built without a client
// is disabled: writes succeed silently and every read misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/metrics"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = redis.Nil

const keyPrefix = "cookbook:"

type Cache struct {
	client *redis.Client
	log    *zap.Logger
}

// New wraps client. A nil client yields a disabled cache.
func New(client *redis.Client, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if client == nil {
		log.Info("Redis not configured, caching disabled")
	}
	return &Cache{client: client, log: log}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Set stores a value in cache with expiration
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+key, data, expiration).Err()
}

// Get decodes the cached value into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
		return err
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()

	return json.Unmarshal(data, dest)
}

// Delete removes keys from cache
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Invalidate deletes keys and logs instead of failing. Stale entries expire
// on their own.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		c.log.Warn("Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
