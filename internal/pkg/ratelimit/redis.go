package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a fixed-window counter store backed by Redis, for
// deployments where limits must hold across nodes. Key expiry doubles as
// window expiry, so no sweep is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisStore creates a Redis-backed store allowing limit events per window.
func NewRedisStore(client *redis.Client, prefix string, limit int, window time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, limit: limit, window: window}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Allow performs an atomic check-and-increment for key. INCR is atomic on
// the Redis side, so concurrent requests for the same key cannot race.
func (s *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	k := s.key(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
			return Decision{}, err
		}
	}

	if count > int64(s.limit) {
		ttl, err := s.client.PTTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			ttl = s.window
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true, Remaining: s.limit - int(count)}, nil
}

// Reset clears the counter for key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
