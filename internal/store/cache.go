// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"unimatch/internal/common/logger"
	"unimatch/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// jsonCache is a cache-aside helper over redis. A nil client disables it and
// every lookup is a miss. Cache failures are logged and never surface to callers.
type jsonCache struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	logger logger.Logger
}

func newJSONCache(client *redis.Client, name string, ttl time.Duration, log logger.Logger) *jsonCache {
	return &jsonCache{client: client, name: name, ttl: ttl, logger: log}
}

func (c *jsonCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// get decodes the value at key into dest and reports whether it was a hit.
func (c *jsonCache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
			metrics.CatalogCacheRequests.WithLabelValues(c.name, "error").Inc()
			return false
		}
		metrics.CatalogCacheRequests.WithLabelValues(c.name, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn("cache entry is corrupt", map[string]interface{}{"key": key, "error": err})
		metrics.CatalogCacheRequests.WithLabelValues(c.name, "error").Inc()
		return false
	}
	metrics.CatalogCacheRequests.WithLabelValues(c.name, "hit").Inc()
	return true
}

func (c *jsonCache) set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}

func (c *jsonCache) invalidate(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
