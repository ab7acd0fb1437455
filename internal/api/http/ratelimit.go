package httpapi

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Admitter is the rate limiter seen by the middleware.
type Admitter interface {
	TryAdmit(ctx context.Context) (bool, int)
	MaxRequests() int
	Window() time.Duration
}

// Paths that are never rate limited.
var bypassPaths = map[string]struct{}{
	"/health":         {},
	"/weather/health": {},
	"/info":           {},
	"/weather/info":   {},
	"/favicon.ico":    {},
}

// RateLimit rejects requests over the global budget with 429 and a
// Retry-After header. A disabled middleware passes everything through.
func RateLimit(limiter Admitter, enabled bool, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rate-limit-middleware")
	logger.Info("rate limit configured", "enabled", enabled, "limit", limiter.MaxRequests(), "window", limiter.Window())

	window := strconv.FormatFloat(limiter.Window().Seconds(), 'f', -1, 64)
	limit := strconv.Itoa(limiter.MaxRequests())

	return func(c *fiber.Ctx) error {
		if !enabled {
			return c.Next()
		}
		if _, ok := bypassPaths[c.Path()]; ok {
			return c.Next()
		}

		allowed, retryAfter := limiter.TryAdmit(c.UserContext())
		if !allowed {
			logger.Warn("rate limit exceeded", "ip", c.IP(), "endpoint", c.Method()+" "+c.Path())

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"detail":      "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
		}

		err := c.Next()

		c.Set("X-RateLimit-Limit", limit)
		c.Set("X-RateLimit-Window", window)
		return err
	}
}
