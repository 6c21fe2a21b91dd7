package api

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/ratelimit"
)

// Limiter decides whether a caller may make a request and, if not, how long to wait
type Limiter interface {
	Check(ctx context.Context, key string) (allowed bool, retryAfter time.Duration)
}

// RateLimiter hands out one token bucket per caller
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex

	limit     rate.Limit
	burstSize int
	idleTTL   time.Duration
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing rps requests per second with the given burst.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     limit,
		burstSize: burst,
		idleTTL:   10 * time.Minute,
		now:       time.Now,
	}
}

// getLimiter returns the limiter for key, evicting buckets idle for longer than idleTTL
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry, ok := rl.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	for k, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}

	limiter := rate.NewLimiter(rl.limit, rl.burstSize)
	rl.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Allow reports whether key may make a request now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Check implements Limiter. A rejected caller is told to wait for one token.
func (rl *RateLimiter) Check(ctx context.Context, key string) (bool, time.Duration) {
	if rl.Allow(key) {
		return true, 0
	}
	if rl.limit == rate.Inf || rl.limit <= 0 {
		return false, time.Second
	}
	return false, time.Duration(float64(time.Second) / float64(rl.limit))
}

// SharedLimiter enforces limits through Redis, falling back to a local limiter while Redis fails
type SharedLimiter struct {
	window   *ratelimit.WindowLimiter
	fallback *RateLimiter
}

// NewSharedLimiter creates a shared limiter
func NewSharedLimiter(window *ratelimit.WindowLimiter, fallback *RateLimiter) *SharedLimiter {
	return &SharedLimiter{window: window, fallback: fallback}
}

// Check implements Limiter
func (l *SharedLimiter) Check(ctx context.Context, key string) (bool, time.Duration) {
	decision, err := l.window.Check(ctx, key)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("shared rate limit unavailable, using local limiter")
		return l.fallback.Check(ctx, key)
	}
	return decision.Allowed, decision.RetryAfter
}

// RateLimitMiddleware creates a middleware that enforces rate limiting.
// Callers are keyed by X-User-ID, falling back to the client IP.
func RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(UserIDHeader)
			if key == "" {
				key = clientIP(r)
			}

			if allowed, wait := limiter.Check(r.Context(), key); !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondError(w, http.StatusTooManyRequests, ErrCodeRateLimit, "Rate limit exceeded. Please try again later.", map[string]interface{}{
					"retryAfter": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
