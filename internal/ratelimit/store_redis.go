package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed fixed-window counter store, for
// deployments running more than one process.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr advances the counter with INCR and pins the window TTL on the
// first hit of each window.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	count := incr.Val()
	ttl := ttlCmd.Val()
	if ttl < 0 {
		// Fresh key, no expiry yet
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		ttl = window
	}
	return count, ttl, nil
}
