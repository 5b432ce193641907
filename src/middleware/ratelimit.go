package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed window counter per client. A client keeps only its current window.
type RateLimiter struct {
	maxRequests    int
	windowDuration time.Duration
	clients        map[string]*clientWindow
	mu             sync.Mutex
	now            func() time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(maxRequests int, windowDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests:    maxRequests,
		windowDuration: windowDuration,
		clients:        make(map[string]*clientWindow),
		now:            time.Now,
	}
}

// clientID is the peer address. Forwarding headers count only when the app is configured with
// fiber's ProxyHeader, which c.IP honors.
func clientID(c *fiber.Ctx) string {
	return c.IP()
}

// Allow counts one request for client and reports whether it fits the current window, plus
// the time left until the window resets.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	window, exists := rl.clients[client]

	if !exists || now.Sub(window.start) >= rl.windowDuration {
		// edge case: sweep expired clients when any window rolls over
		rl.sweep(now)
		rl.clients[client] = &clientWindow{start: now, count: 1}
		return true, rl.windowDuration
	}

	remaining := rl.windowDuration - now.Sub(window.start)
	if window.count >= rl.maxRequests {
		return false, remaining
	}

	window.count++
	return true, remaining
}

func (rl *RateLimiter) sweep(now time.Time) {
	for client, window := range rl.clients {
		if now.Sub(window.start) >= rl.windowDuration {
			delete(rl.clients, client)
		}
	}
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		client := clientID(c)

		allowed, retryAfter := rl.Allow(client)
		if !allowed {
			log.Warn().
				Str("request_id", requestIDFrom(c)).
				Str("client_ip", client).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("max_requests", rl.maxRequests).
				Msg("Rate limit exceeded")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Window", rl.windowDuration.String())

		return c.Next()
	}
}
