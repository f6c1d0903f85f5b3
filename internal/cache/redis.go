package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/example/flashlytics/internal/logger"
)

// Redis is the shared Store backend for multi-instance deployments. Redis
// owns TTL expiry; a Redis outage degrades to cache misses, never to call
// failures.
type Redis struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedis connects and pings the Redis instance at addr.
func NewRedis(log *logger.Logger, addr string) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{log: log.With("component", "rediscache"), rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
