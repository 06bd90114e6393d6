package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/paarijaat/stickyapp/internal/platform/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Idle client buckets are forgotten after this long.
const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter limits each client IP to ratePerSecond with the given
// burst. Denials answer 429 and are counted per route pattern.
func newRateLimiter(ratePerSecond float64, burst int, denied *prometheus.CounterVec) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(ratePerSecond),
		Burst:     burst,
		ExpiresIn: rateLimiterExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, client string, _ error) error {
			denied.WithLabelValues(c.Path()).Inc()
			c.Response().Header().Set("Retry-After", retryAfter(ratePerSecond))
			return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error:   "rate limit exceeded",
				Type:    apperrors.TypeUnavailable,
				Context: map[string]any{"client": client},
			})
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.InternalError("could not identify client", err)
		},
	})
}

// retryAfter is the whole number of seconds until one token refills.
func retryAfter(ratePerSecond float64) string {
	return strconv.Itoa(max(1, int(math.Ceil(1/ratePerSecond))))
}
