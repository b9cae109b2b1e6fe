package spacetraveling

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter rate-limits requests per client IP with a token bucket per IP.
type IPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

// NewIPLimiter allows r requests per second per IP with the given burst.
// Buckets unused for longer than idle are dropped by Run.
func NewIPLimiter(r rate.Limit, burst int, idle time.Duration) *IPLimiter {
	return &IPLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     r,
		burst:    burst,
		idle:     idle,
	}
}

// Run removes idle buckets every interval until stop is closed.
func (l *IPLimiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-stop:
			return
		}
	}
}

func (l *IPLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, il := range l.limiters {
		if now.Sub(il.lastSeen) > l.idle {
			delete(l.limiters, ip)
		}
	}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if il, ok := l.limiters[ip]; ok {
		il.lastSeen = time.Now()
		return il.limiter
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	l.limiters[ip] = &ipLimiter{limiter: lim, lastSeen: time.Now()}
	return lim
}

// Allow reports whether ip may make a request now and consumes a token.
func (l *IPLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func (l *IPLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				retry := time.Duration(float64(time.Second) / float64(l.rate))
				if retry < time.Second {
					retry = time.Second
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				c.Response().Header().Set("Cache-Control", "no-store")
				return c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
			}
			return next(c)
		}
	}
}
