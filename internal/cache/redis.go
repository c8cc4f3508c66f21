package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is a shared expiring counter store
type Counter interface {
	// Incr increments key and returns the new value. The key expires after
	// ttl, measured from the first increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed counter store
func NewRedisCache(redisURL string) (Counter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// If URL parsing fails, try as simple host:port
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	return newRedisCache(redis.NewClient(opt))
}

func newRedisCache(client *redis.Client) (Counter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

// Incr increments key in one transaction that first creates it with its
// expiry, so the key never exists without a TTL
func (r *redisCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, ttl)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Close releases the underlying connection pool
func (r *redisCache) Close() error {
	return r.client.Close()
}
