package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	dbredis "github.com/eventboard/eventboard/internal/infrastructure/db/redis"
	"github.com/eventboard/eventboard/internal/pkg/metrics"
)

// RateLimiter counts hits per key.
type RateLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, key string) (dbredis.Decision, error)
}

// RateLimit limits requests per route and client IP. Limiter failures let
// the request through.
func RateLimit(limiter RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil || !limiter.Enabled() {
			return next
		}
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			key := c.Path() + ":" + c.RealIP()
			d, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			reset := strconv.Itoa(int(d.Reset.Seconds()))
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", reset)

			if !d.Allowed {
				metrics.RateLimitedTotal.Inc()
				h.Set("Retry-After", reset)
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
