package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, limit int, period time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, period)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter(t *testing.T) {
	t.Run("blocks after limit", func(t *testing.T) {
		rl := newTestLimiter(t, 3, time.Minute)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("a"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("a"))
		assert.Equal(t, 0, rl.Remaining("a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := newTestLimiter(t, 1, time.Minute)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
		assert.Equal(t, 1, rl.Remaining("c"))
	})

	t.Run("window resets", func(t *testing.T) {
		rl := newTestLimiter(t, 1, time.Minute)
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		now = now.Add(time.Minute)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimit_PerTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, 1, time.Minute)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, c.GetHeader(HeaderTenantID))
		c.Next()
	})
	r.POST("/recalculate", RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/recalculate", nil)
		req.Header.Set(HeaderTenantID, tenant)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("t1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do("t1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("t2").Code)
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, 1, time.Minute)

	r := gin.New()
	r.Use(RateLimitByKey(rl, func(c *gin.Context) string { return c.GetHeader("X-User-ID") }))
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
