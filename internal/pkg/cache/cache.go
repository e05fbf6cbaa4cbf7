package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// SetupCache initializes the connection to the Redis compatible cache server.
// A failed ping is logged; callers treat the cache as optional.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetInt("CACHE_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		logging.Logger().WithError(err).Warn("Could not connect to cache")
	} else {
		logging.Logger().Infof("Successfully connected to cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// SetClient replaces the shared client, e.g. with one pointing at miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// Available pings the cache. Callers skip Redis-backed features when it is down.
func Available(ctx context.Context) bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
