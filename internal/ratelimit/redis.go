package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements RemoteLimiter with a sliding window over a Redis
// sorted set: one member per request, scored by timestamp, trimmed to the
// window on every check. Sliding-window weighting means counts decay
// continuously instead of resetting at fixed boundaries.
type RedisLimiter struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
}

// NewRedisLimiter connects to the rate-limit service at rawURL, authenticating
// with token. The per-call timeout keeps a slow Redis from stalling request
// handling; timeouts surface as errors and trip the caller's circuit breaker.
func NewRedisLimiter(rawURL, token string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit service URL: %w", err)
	}
	if token != "" {
		opts.Password = token
	}

	return &RedisLimiter{
		client:  redis.NewClient(opts),
		limit:   limit,
		window:  window,
		prefix:  "portfolio:contact",
		timeout: 2 * time.Second,
	}, nil
}

// Allow records a request for identifier and returns the sliding-window verdict.
func (r *RedisLimiter) Allow(ctx context.Context, identifier string) (RemoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	key := r.prefix + ":" + identifier
	member := strconv.FormatInt(now.UnixNano(), 10)
	windowStart := strconv.FormatInt(now.Add(-r.window).UnixMilli(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", windowStart)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return RemoteResult{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(countCmd.Val())
	reset := now.Add(r.window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		reset = time.UnixMilli(int64(oldest[0].Score)).Add(r.window)
	}

	if count > r.limit {
		// Remove our own entry so a rejected request does not consume quota.
		r.client.ZRem(ctx, key, member)
		return RemoteResult{Allowed: false, Reset: reset}, nil
	}

	return RemoteResult{Allowed: true, Reset: reset, Remaining: r.limit - count}, nil
}
