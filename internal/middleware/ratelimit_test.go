package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"signup-be/internal/cache"
)

func setupLimitedRouter(limiter Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.POST("/api/signup", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func requestFrom(router http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/signup", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBurstThenReject(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 3)
	frozen := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return frozen }
	router := setupLimitedRouter(limiter)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1").Code, "request %d", i)
	}

	rec := requestFrom(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded. Please try again later."}`, rec.Body.String())

	// Other visitors have their own budget
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.2").Code)
}

func TestRateLimiterRefills(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(context.Background(), "10.0.0.1")
	assert.False(t, allowed)

	now = now.Add(time.Second)
	allowed, _ = limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "10.0.0.1")
	now = now.Add(5 * time.Minute)
	_, _ = limiter.Allow(context.Background(), "10.0.0.2")
	require.Equal(t, 2, limiter.visitorCount())

	now = now.Add(6 * time.Minute)
	limiter.evictIdle()
	assert.Equal(t, 1, limiter.visitorCount())

	now = now.Add(10 * time.Minute)
	limiter.evictIdle()
	assert.Equal(t, 0, limiter.visitorCount())
}

func TestRateLimiterRunStopsWithContext(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- limiter.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func setupSharedLimiter(t *testing.T, rps float64, burst int) (*miniredis.Miniredis, *SharedRateLimiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	counter, err := cache.NewRedisCache(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { counter.Close() })
	return mr, NewSharedRateLimiter(counter, rps, burst)
}

func TestSharedRateLimiterWindow(t *testing.T) {
	_, limiter := setupSharedLimiter(t, 5, 10)
	assert.Equal(t, 2*time.Second, limiter.window)

	_, small := setupSharedLimiter(t, 100, 1)
	assert.Equal(t, time.Second, small.window, "window never drops below one second")
}

func TestSharedRateLimiterAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newInstance := func() *SharedRateLimiter {
		counter, err := cache.NewRedisCache(mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { counter.Close() })
		l := NewSharedRateLimiter(counter, 1, 2)
		l.now = func() time.Time { return time.Unix(1700000000, 0) }
		return l
	}

	a := setupLimitedRouter(newInstance())
	b := setupLimitedRouter(newInstance())

	assert.Equal(t, http.StatusOK, requestFrom(a, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, requestFrom(b, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(a, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(b, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, requestFrom(b, "10.0.0.9").Code)
}

func TestSharedRateLimiterNextWindow(t *testing.T) {
	_, limiter := setupSharedLimiter(t, 1, 1)
	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(time.Second)
	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSharedRateLimiterFailsOpen(t *testing.T) {
	mr, limiter := setupSharedLimiter(t, 1, 1)
	mr.Close()

	router := setupLimitedRouter(limiter)
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1").Code)
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestRateLimitRejectsWhenLimiterSaysNo(t *testing.T) {
	router := setupLimitedRouter(errLimiter{})
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(router, "10.0.0.1").Code)
}
