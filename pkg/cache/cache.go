package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"salon-api/pkg/config"
)

var (
	client *redis.Client
	ttl    time.Duration
)

// Initialize connects the optional Redis cache. A missing REDIS_URL
// leaves the cache disabled; every accessor then degrades to a miss.
func Initialize(cfg *config.Config, log *zap.Logger) error {
	if cfg.Redis.URL == "" {
		log.Info("Redis cache disabled (no REDIS_URL configured)")
		return nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return err
	}

	client = redis.NewClient(opts)
	ttl = cfg.Redis.TTL

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		return err
	}

	log.Info("Redis cache connected", zap.String("url", cfg.Redis.URL))
	return nil
}

// Enabled reports whether a cache backend is available
func Enabled() bool {
	return client != nil
}

// Get returns the cached value for key, or "" on miss or when disabled
func Get(ctx context.Context, key string) string {
	if client == nil {
		return ""
	}
	val, err := client.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stores a value under key with the configured TTL. Errors are
// swallowed: the cache is best-effort and the store stays authoritative.
func Set(ctx context.Context, key, value string) {
	if client == nil {
		return
	}
	client.Set(ctx, key, value, ttl)
}

// Delete drops a key, used for invalidation on writes
func Delete(ctx context.Context, key string) {
	if client == nil {
		return
	}
	client.Del(ctx, key)
}
