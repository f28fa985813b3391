// Package ratelimit implements a Redis backed fixed window rate limiter.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter defines the interface for rate limiting operations
type Limiter interface {
	// Allow reports whether one more request for key fits in the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Remaining returns how many requests are left in the current window.
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)

	Reset(ctx context.Context, key string, window time.Duration) error
}

// FixedWindowLimiter counts requests per key in windows aligned to the unix
// epoch. Counters live in Redis, so limits hold across instances.
type FixedWindowLimiter struct {
	client *redis.Client
	logger *zap.Logger
	// failOpen allows requests when Redis is unavailable.
	failOpen bool
	now      func() time.Time
}

type Option func(*FixedWindowLimiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindowLimiter) { l.now = now }
}

func NewFixedWindowLimiter(client *redis.Client, logger *zap.Logger, failOpen bool, opts ...Option) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		client:   client,
		logger:   logger,
		failOpen: failOpen,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucketKey := l.bucketKey(key, window)

	pipe := l.client.Pipeline()
	incrCmd := pipe.IncrBy(ctx, bucketKey, 1)
	// one second past the window end so a late reader still sees the count
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed", zap.String("key", bucketKey), zap.Error(err))
		if l.failOpen {
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}
	return allowed, nil
}

func (l *FixedWindowLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	count, err := l.client.Get(ctx, l.bucketKey(key, window)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to get remaining requests: %w", err)
	}
	return max(limit-int(count), 0), nil
}

// Reset clears the counter of the current window.
func (l *FixedWindowLimiter) Reset(ctx context.Context, key string, window time.Duration) error {
	if err := l.client.Del(ctx, l.bucketKey(key, window)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

// ResetAt returns the end of the window containing now.
func (l *FixedWindowLimiter) ResetAt(window time.Duration) time.Time {
	return l.now().Truncate(window).Add(window)
}

func (l *FixedWindowLimiter) bucketKey(key string, window time.Duration) string {
	bucket := l.now().UnixMilli() / window.Milliseconds()
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}
