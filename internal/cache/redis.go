// Package cache provides the invalidatable cache used by the cost
// engine's margin lookups and the dashboard read path. It prefers a
// Redis client where one is configured and falls back to an in-process
// patrickmn/go-cache store otherwise, so a single-operator deployment
// never has to stand up Redis just to get caching.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis builds and pings a fully configured Redis client.
func NewRedis(addr, username, password string, db int, tlsEnabled bool) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	}

	if tlsEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return client, nil
}
