package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleRoot(c echo.Context) error {
	msg := fmt.Sprintf("ok, localip %s, %s", s.localIP, s.clock.Now().Format(time.RFC1123Z))
	if err := c.String(http.StatusOK, msg); err != nil {
		return fmt.Errorf("failed to write root response: %w", err)
	}
	return nil
}

// handleShutdown stops every session without waiting for them, then asks
// the process to shut the server down.
func (s *Server) handleShutdown(c echo.Context) error {
	slog.WarnContext(c.Request().Context(), "Server shutdown requested")
	s.BeginDrain()
	stopping := s.sessions.ShutdownAll()
	s.requestShutdown()

	slog.InfoContext(c.Request().Context(), "Stop sent to sessions", "sessions", stopping)
	if err := c.String(http.StatusOK, "ok"); err != nil {
		return fmt.Errorf("failed to write shutdown response: %w", err)
	}
	return nil
}
