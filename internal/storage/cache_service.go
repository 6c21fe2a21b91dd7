package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobbuddy/internal/circuitbreaker"
	apperrors "github.com/jobbuddy/internal/errors"
)

// CacheService provides JSON caching of computed per-user views
type CacheService struct {
	redis   *RedisCache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// WithBreaker routes every Redis call through cb. While the circuit is open,
// calls fail fast with a cache error and callers fall back to the database.
func (c *CacheService) WithBreaker(cb *circuitbreaker.CircuitBreaker) *CacheService {
	c.breaker = cb
	return c
}

func (c *CacheService) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyStreakSummary is for a user's streak summary
	CacheKeyStreakSummary CacheKeyType = "streak"
	// CacheKeyUnreadCount is for a user's unread notification count
	CacheKeyUnreadCount CacheKeyType = "unread"
)

// GenerateCacheKey generates a cache key for a given type and parameters
// Format: <type>:<param1>:<param2>:...
func GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, string(keyType))
	for _, p := range params {
		parts = append(parts, strings.ToLower(p))
	}
	return strings.Join(parts, ":")
}

// StreakSummaryKey is the key of a user's cached streak summary
func StreakSummaryKey(userID string) string {
	return GenerateCacheKey(CacheKeyStreakSummary, userID)
}

// UnreadCountKey is the key of a user's cached unread notification count
func UnreadCountKey(userID string) string {
	return GenerateCacheKey(CacheKeyUnreadCount, userID)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.guard(func() error { return c.redis.Set(ctx, key, data, ttl) }); err != nil {
		return apperrors.NewCacheError("set "+key, err)
	}
	return nil
}

// Get retrieves a value from cache and deserializes it into dest.
// A miss returns false with no error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data string
	miss := false
	err := c.guard(func() error {
		var err error
		data, err = c.redis.Get(ctx, key)
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		return false, apperrors.NewCacheError("get "+key, err)
	}
	if miss {
		return false, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.guard(func() error { return c.redis.Del(ctx, keys...) }); err != nil {
		return apperrors.NewCacheError("invalidate", err)
	}
	return nil
}

// InvalidateUser removes every cached view of a user
func (c *CacheService) InvalidateUser(ctx context.Context, userID string) error {
	return c.Invalidate(ctx, StreakSummaryKey(userID), UnreadCountKey(userID))
}
