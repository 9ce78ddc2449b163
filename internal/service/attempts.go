package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed sign-ins per account
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RedisAttemptLimiter keeps a counter per key that expires after a window
type RedisAttemptLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	keyPrefix   string
}

// NewRedisAttemptLimiter creates a limiter allowing maxAttempts failures per window
func NewRedisAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		keyPrefix:   "auth:attempts",
	}
}

func (l *RedisAttemptLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.keyPrefix, k)
}

// Allow reports whether another attempt is permitted
func (l *RedisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, l.key(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return count < l.maxAttempts, nil
}

// Fail records one failed attempt; the window starts at the first failure
func (l *RedisAttemptLimiter) Fail(ctx context.Context, key string) error {
	k := l.key(key)
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to increment attempt counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set attempt window: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful sign-in
func (l *RedisAttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempt counter: %w", err)
	}
	return nil
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopLimiter) Fail(context.Context, string) error          { return nil }
func (noopLimiter) Reset(context.Context, string) error         { return nil }
