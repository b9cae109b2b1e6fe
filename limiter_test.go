package spacetraveling

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewIPLimiter(rate.Every(time.Hour), 2, time.Minute)
	ip := "203.0.113.10"

	assert.True(t, limiter.Allow(ip), "first request")
	assert.True(t, limiter.Allow(ip), "second request")
	assert.False(t, limiter.Allow(ip), "third request should be blocked")
}

func TestIPLimiterRefills(t *testing.T) {
	limiter := NewIPLimiter(rate.Every(100*time.Millisecond), 1, time.Minute)
	ip := "203.0.113.20"

	assert.True(t, limiter.Allow(ip))
	assert.False(t, limiter.Allow(ip))

	time.Sleep(150 * time.Millisecond)
	assert.True(t, limiter.Allow(ip), "token should have refilled")
}

func TestIPLimiterIsPerIP(t *testing.T) {
	limiter := NewIPLimiter(rate.Every(time.Hour), 1, time.Minute)

	assert.True(t, limiter.Allow("203.0.113.30"))
	assert.True(t, limiter.Allow("203.0.113.31"), "second ip is independent")
	assert.False(t, limiter.Allow("203.0.113.30"))
}

func TestIPLimiterCleanup(t *testing.T) {
	limiter := NewIPLimiter(rate.Every(time.Hour), 1, time.Minute)
	limiter.Allow("203.0.113.40")

	limiter.cleanup(time.Now().Add(2 * time.Minute))
	assert.Empty(t, limiter.limiters)
}

func TestIPLimiterMiddleware(t *testing.T) {
	e := echo.New()
	limiter := NewIPLimiter(rate.Every(time.Hour), 1, time.Minute)
	h := limiter.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/posts/more/", nil)
		req.RemoteAddr = "203.0.113.50:1234"
		rec := httptest.NewRecorder()
		_ = h(e.NewContext(req, rec))
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
