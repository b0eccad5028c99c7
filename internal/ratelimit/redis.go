package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared fixed-window store for multi-instance
// deployments. The window is the key's TTL: INCR on each check, EXPIRE
// set when the key is first created.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a store over an existing Redis client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) redisKey(identity string, op Operation) string {
	return s.prefix + ":" + key(identity, op)
}

func (s *RedisStore) Check(ctx context.Context, identity string, op Operation) (Result, error) {
	limit := Limits[op]
	k := s.redisKey(identity, op)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, k, limit.Window).Err(); err != nil {
			return Result{}, err
		}
	}

	ttl, err := s.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = limit.Window
	}
	resetAt := time.Now().Add(ttl)

	if count > int64(limit.MaxAttempts) {
		// Keep the counter at the cap so blocked calls do not extend it.
		s.client.Decr(ctx, k)
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Result{
		Allowed:   true,
		Remaining: limit.MaxAttempts - int(count),
		ResetAt:   resetAt,
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, identity string, op Operation) error {
	return s.client.Del(ctx, s.redisKey(identity, op)).Err()
}
