package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"signup-be/internal/cache"
	"signup-be/internal/metrics"
	"signup-be/internal/render"
)

// MsgRateLimited is the error body for rejected requests
const MsgRateLimited = "Rate limit exceeded. Please try again later."

// Limiter decides whether a client identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter holds rate limiters for different IPs
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit // requests per second
	burst    int        // maximum burst size
	idleTTL  time.Duration
	now      func() time.Time
}

// visitor holds a rate limiter for a specific IP
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates an in-process rate limiter.
// rps: requests per second
// burst: maximum burst size (allows short bursts above the rate)
// Call Run to evict idle visitors.
func NewRateLimiter(rps rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rps,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether the visitor identified by ip may make a request now
func (rl *RateLimiter) Allow(_ context.Context, ip string) (bool, error) {
	return rl.getVisitor(ip).AllowN(rl.now(), 1), nil
}

// getVisitor returns the rate limiter for a specific IP, creating one if needed
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Run evicts idle visitors every interval until ctx is done
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// visitorCount is the number of tracked IPs
func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// SharedRateLimiter counts requests in Redis so every instance sees the same
// budget. It allows burst requests per window of burst/rps seconds, which
// matches the long-run rate of the in-process token bucket.
type SharedRateLimiter struct {
	counter cache.Counter
	burst   int64
	window  time.Duration
	now     func() time.Time
}

// NewSharedRateLimiter creates a Redis-backed fixed window limiter
func NewSharedRateLimiter(counter cache.Counter, rps float64, burst int) *SharedRateLimiter {
	window := time.Duration(math.Ceil(float64(burst) / rps * float64(time.Second)))
	if window < time.Second {
		window = time.Second
	}
	return &SharedRateLimiter{
		counter: counter,
		burst:   int64(burst),
		window:  window,
		now:     time.Now,
	}
}

// Allow increments the counter for the current window
func (sl *SharedRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	slot := sl.now().UnixNano() / int64(sl.window)
	key := fmt.Sprintf("ratelimit:%s:%d", ip, slot)

	count, err := sl.counter.Incr(ctx, key, sl.window)
	if err != nil {
		return true, err
	}
	return count <= sl.burst, nil
}

// RateLimit returns a Gin middleware that rate limits requests by client IP.
// Limiter errors are logged and the request is let through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("rate limiter unavailable")
		}

		if !allowed {
			metrics.RateLimitedTotal.Inc()
			render.Error(c, http.StatusTooManyRequests, MsgRateLimited)
			return
		}

		c.Next()
	}
}
