package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/paarijaat/stickyapp/internal/adapter/metrics"
	apperrors "github.com/paarijaat/stickyapp/internal/platform/errors"
)

func (s *Server) registerRoutes() {
	s.echo.Use(newCorrelationMiddleware())
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(s.httpMetrics.Middleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(apperrors.Middleware(s.httpMetrics.Errors))

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	// Health, version and metrics stay reachable when the API is saturated.
	var api []echo.MiddlewareFunc
	if s.config.RateLimitRPS > 0 {
		api = append(api, newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst, s.httpMetrics.RateLimited))
	}
	api = append(api,
		newLoadShedder(int64(s.config.MaxConcurrentRequests), s.httpMetrics.Shed),
		newTimeoutMiddleware(s.config.RequestTimeout),
	)

	s.echo.GET("/", s.handleRoot, api...)
	s.echo.GET("/shutdown", s.handleShutdown, api...)
	s.echo.GET("/sessions", s.handleListSessions, api...)
	s.echo.POST("/sessions", s.handleCreateSession, api...)
	s.echo.POST("/sessions/:sid", s.handleSessionAction, api...)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
