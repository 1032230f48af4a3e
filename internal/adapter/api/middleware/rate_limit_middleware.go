package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "recyclex/pkg/errors"
	"recyclex/pkg/logger"
	"recyclex/pkg/response"
)

// RateLimitMiddleware throttles requests per client IP with a fixed window.
// An exhausted IP is blocked for the remainder of its window.
type RateLimitMiddleware struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens     int
	lastSeen   time.Time
	blockUntil time.Time
}

func NewRateLimitMiddleware(rate int, window time.Duration) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()

		if blocked, until := rl.take(ip); blocked {
			retryAfter := time.Until(until).Round(time.Second)
			logger.Warn("Rate limit exceeded for %s, retry in %v", ip, retryAfter)
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			return response.Error(c, apperrors.New(
				"RATE_LIMITED",
				"Too many requests, please slow down",
				http.StatusTooManyRequests,
				nil,
			))
		}

		return next(c)
	}
}

func (rl *RateLimitMiddleware) take(ip string) (blocked bool, until time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastSeen: now}
		return false, time.Time{}
	}

	if now.Before(v.blockUntil) {
		return true, v.blockUntil
	}

	// Refill proportionally to the time since the last request.
	elapsed := now.Sub(v.lastSeen)
	v.tokens += int(elapsed * time.Duration(rl.rate) / rl.window)
	if v.tokens > rl.rate {
		v.tokens = rl.rate
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		v.blockUntil = now.Add(rl.window)
		return true, v.blockUntil
	}

	v.tokens--
	return false, time.Time{}
}

func (rl *RateLimitMiddleware) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastSeen) > 2*time.Hour {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
