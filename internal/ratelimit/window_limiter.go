// Package ratelimit counts requests per caller in Redis so limits hold across server replicas.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default window configuration values.
const (
	DefaultWindowSize = time.Minute
	KeyPrefix         = "ratelimit:"
)

// WindowLimiter is a fixed-window counter keyed by caller and window index.
// Each window's key expires shortly after the window ends.
type WindowLimiter struct {
	redis      redis.Cmdable
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

// WindowLimiterConfig holds configuration for the window limiter.
type WindowLimiterConfig struct {
	// Redis is required.
	Redis redis.Cmdable

	// RequestsPerSecond and Burst are converted to a per-window allowance:
	// ceil(RequestsPerSecond * window) plus Burst.
	RequestsPerSecond float64
	Burst             int

	// WindowSize defaults to one minute.
	WindowSize time.Duration

	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Decision is the outcome of one Check
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	RetryAfter time.Duration // time until the window resets, set when not allowed
}

// Validate checks if the configuration is valid.
func (c *WindowLimiterConfig) Validate() error {
	if c.Redis == nil {
		return errors.New("redis client is required")
	}
	if c.RequestsPerSecond <= 0 {
		return errors.New("requests per second must be positive")
	}
	if c.Burst < 0 {
		return errors.New("burst cannot be negative")
	}
	if c.WindowSize < 0 {
		return errors.New("window size cannot be negative")
	}
	return nil
}

// NewWindowLimiter creates a limiter from cfg
func NewWindowLimiter(cfg *WindowLimiterConfig) (*WindowLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	window := cfg.WindowSize
	if window == 0 {
		window = DefaultWindowSize
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &WindowLimiter{
		redis:      cfg.Redis,
		limit:      int(math.Ceil(cfg.RequestsPerSecond*window.Seconds())) + cfg.Burst,
		windowSize: window,
		now:        now,
	}, nil
}

// Limit returns the number of requests allowed per window
func (l *WindowLimiter) Limit() int {
	return l.limit
}

// windowKey returns the Redis key of key's current window and when that window ends
func (l *WindowLimiter) windowKey(key string, now time.Time) (string, time.Time) {
	index := now.UnixNano() / int64(l.windowSize)
	end := time.Unix(0, (index+1)*int64(l.windowSize))
	return KeyPrefix + key + ":" + strconv.FormatInt(index, 10), end
}

// Check counts one request for key and reports whether it fits in the current window.
// Rejected requests still count, so a caller hammering the API stays limited until the window resets.
func (l *WindowLimiter) Check(ctx context.Context, key string) (*Decision, error) {
	now := l.now()
	redisKey, windowEnd := l.windowKey(key, now)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.windowSize+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to count request: %w", err)
	}

	count := incr.Val()
	decision := &Decision{
		Allowed: count <= int64(l.limit),
		Count:   count,
		Limit:   l.limit,
	}
	if !decision.Allowed {
		decision.RetryAfter = windowEnd.Sub(now)
	}
	return decision, nil
}

// Usage returns how many requests key has made in the current window
func (l *WindowLimiter) Usage(ctx context.Context, key string) (int64, error) {
	redisKey, _ := l.windowKey(key, l.now())
	count, err := l.redis.Get(ctx, redisKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return count, nil
}
