package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/paarijaat/stickyapp/internal/platform/correlation"
	apperrors "github.com/paarijaat/stickyapp/internal/platform/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"
)

// newCorrelationMiddleware reuses the caller's X-Request-Id or generates
// one, echoes it back and makes it the correlation id of the request's logs.
func newCorrelationMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}

// newLoadShedder rejects requests beyond limit instead of queueing them.
func newLoadShedder(limit int64, shed prometheus.Counter) echo.MiddlewareFunc {
	sem := semaphore.NewWeighted(limit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sem.TryAcquire(1) {
				shed.Inc()
				return apperrors.UnavailableError("service is overloaded, try again later")
			}
			defer sem.Release(1)
			return next(c)
		}
	}
}

// newTimeoutMiddleware puts a deadline on the request context. Handlers
// that give up because of it answer 408 themselves; a deadline error that
// escapes a handler is turned into a structured timeout.
func newTimeoutMiddleware(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return apperrors.TimeoutError("request timed out", err)
			}
			return err
		},
	})
}
