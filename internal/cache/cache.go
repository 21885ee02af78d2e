package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is the invalidatable cache contract consumed by the cost engine
// and the dashboard read path. Per the design notes, invalidation is
// coarse: a mutation invalidates every key under a prefix rather than a
// single key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	InvalidatePrefixes(ctx context.Context, prefixes ...string) error
}

// RedisCache is the production Cache backed by a shared Redis instance,
// using SCAN so invalidation does not block the server on large
// keyspaces.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.client.Set(ctx, key, value, ttl)
}

func (c *RedisCache) InvalidatePrefixes(ctx context.Context, prefixes ...string) error {
	for _, prefix := range prefixes {
		iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

// LocalCache is the single-operator fallback Cache: an in-process
// patrickmn/go-cache store. go-cache has no pattern-scan primitive, so
// LocalCache tracks its own key set under a mutex to support prefix
// invalidation.
type LocalCache struct {
	mu    sync.Mutex
	store *cache.Cache
	keys  map[string]struct{}
}

// NewLocalCache builds a LocalCache with the given default TTL and
// cleanup interval.
func NewLocalCache(defaultTTL, cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{
		store: cache.New(defaultTTL, cleanupInterval),
		keys:  make(map[string]struct{}),
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.store.Set(key, value, ttl)
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
}

func (c *LocalCache) InvalidatePrefixes(_ context.Context, prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.keys {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				c.store.Delete(key)
				delete(c.keys, key)
				break
			}
		}
	}
	return nil
}
