package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache is a Redis-backed tenant cache for multi-instance
// deployments, where in-process eviction cannot be coordinated.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a tenant cache on top of a connected Redis client.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client, prefix: "tenant:"}
}

func (c *redisCache) Get(ctx context.Context, slug string) (*Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+slug).Bytes()
	if err != nil {
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		// Corrupt entry: drop it and fall through to the provider.
		_ = c.client.Del(ctx, c.prefix+slug).Err()
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.prefix+slug, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, slug string) {
	_ = c.client.Del(ctx, c.prefix+slug).Err()
}

// Close is a no-op: the Redis client is injected and owned by the
// caller, which closes it on shutdown.
func (c *redisCache) Close() error {
	return nil
}
