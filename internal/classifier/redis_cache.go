package classifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache is a best-effort read-through cache for classifier results.
// Redis being unavailable only costs an extra classifier call.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client as a ResultCache. Returns nil when the
// client is nil so callers can pass it straight into NewClient.
func NewRedisCache(client *redis.Client) ResultCache {
	if client == nil {
		return nil
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (Result, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (c *redisCache) Set(ctx context.Context, key string, result Result, ttl time.Duration) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, ttl).Err()
}
