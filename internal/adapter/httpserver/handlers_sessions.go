package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/platform/correlation"
	apperrors "github.com/paarijaat/stickyapp/internal/platform/errors"
)

const (
	headerSessionID       = "X-Sessionid"
	headerSessionLocation = "X-Sessionlocation"
)

type sessionRequest struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"sessionid"`
}

type listSessionsResponse struct {
	Message    string             `json:"message"`
	SessionIDs []domain.SessionID `json:"sessionids"`
}

func (s *Server) handleListSessions(c echo.Context) error {
	ids := s.sessions.List()
	if ids == nil {
		ids = []domain.SessionID{}
	}
	slices.Sort(ids)

	if err := c.JSON(http.StatusOK, listSessionsResponse{Message: "Ok", SessionIDs: ids}); err != nil {
		return fmt.Errorf("failed to write session list: %w", err)
	}
	return nil
}

func (s *Server) handleCreateSession(c echo.Context) error {
	kind := domain.KindPlaintext
	if raw := c.QueryParam("encrypted"); raw != "" {
		encrypted, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.ValidationError("encrypted must be a boolean").WithField("encrypted", raw)
		}
		if encrypted {
			kind = domain.KindHomomorphic
		}
	}

	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	ctx := c.Request().Context()
	id, payload, err := s.sessions.Create(ctx, req.Message, kind)
	if id != "" {
		c.Response().Header().Set(headerSessionID, id.String())
	}
	if err != nil {
		slog.WarnContext(correlation.WithSessionID(ctx, id.String()), "Session creation failed", "kind", kind, "error", err)
		return s.writeSessionError(c, id, err)
	}

	c.Response().Header().Set(headerSessionLocation, s.localIP)
	return writeSessionResponse(c, http.StatusOK, sessionResponse{Status: true, Message: payload, SessionID: id.String()})
}

func (s *Server) handleSessionAction(c echo.Context) error {
	id := domain.SessionID(c.Param("sid"))

	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithField("session_id", id)
	}

	ctx := correlation.WithSessionID(c.Request().Context(), id.String())
	reply, err := s.sessions.Dispatch(ctx, id, req.Message)
	if err != nil {
		slog.WarnContext(ctx, "Session command failed", "error", err)
		return s.writeSessionError(c, id, err)
	}
	if reply.Terminated() {
		slog.InfoContext(ctx, "Session exited")
	}

	return writeSessionResponse(c, http.StatusOK, sessionResponse{Status: true, Message: reply.Payload, SessionID: id.String()})
}

func (s *Server) writeSessionError(c echo.Context, id domain.SessionID, err error) error {
	status := sessionErrorStatus(err)
	s.httpMetrics.Errors.WithLabelValues(sessionErrorType(status)).Inc()
	return writeSessionResponse(c, status, sessionResponse{Message: err.Error(), SessionID: id.String()})
}

// sessionErrorStatus maps session runtime errors to HTTP status codes.
// A full mailbox is checked first because it carries the caller's
// deadline as well.
func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInitFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMailboxFull), errors.Is(err, domain.ErrShuttingDown):
		return http.StatusServiceUnavailable
	case domain.IsUnreachable(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func sessionErrorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(apperrors.TypeNotFound)
	case http.StatusUnprocessableEntity:
		return string(apperrors.TypeUnprocessable)
	case http.StatusServiceUnavailable:
		return string(apperrors.TypeUnavailable)
	case http.StatusBadGateway:
		return string(apperrors.TypeUnreachable)
	case http.StatusRequestTimeout:
		return string(apperrors.TypeTimeout)
	default:
		return string(apperrors.TypeInternal)
	}
}

func writeSessionResponse(c echo.Context, status int, resp sessionResponse) error {
	if err := c.JSON(status, resp); err != nil {
		return fmt.Errorf("failed to write session response: %w", err)
	}
	return nil
}
