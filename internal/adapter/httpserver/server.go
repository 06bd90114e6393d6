package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/paarijaat/stickyapp/internal/adapter/metrics"
	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
)

type sessionManager interface {
	Create(ctx context.Context, initMessage string, kind domain.Kind) (domain.SessionID, string, error)
	Dispatch(ctx context.Context, id domain.SessionID, message string) (domain.Reply, error)
	List() []domain.SessionID
	ShutdownAll() int
}

var errDraining = errors.New("server is shutting down")

type Server struct {
	echo   *echo.Echo
	config *config.Config

	sessions    sessionManager
	localIP     string
	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics

	clock        clockwork.Clock
	startTime    time.Time
	healthChecks []HealthCheck

	draining     atomic.Bool
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

type Option func(*Server)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithHealthChecks adds readiness checks run by /health/ready.
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = append(s.healthChecks, checks...) }
}

// NewServer wires the HTTP API in front of the session manager. localIP is
// reported by / and in the X-Sessionlocation header.
func NewServer(cfg *config.Config, sessions sessionManager, localIP string, reg *prometheus.Registry, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:        e,
		config:      cfg,
		sessions:    sessions,
		localIP:     localIP,
		registry:    reg,
		httpMetrics: metrics.NewHTTPMetrics(reg),
		clock:       clockwork.NewRealClock(),
		shutdownCh:  make(chan struct{}),
	}
	srv.healthChecks = []HealthCheck{{Name: "shutdown", Check: srv.checkNotDraining}}
	for _, opt := range opts {
		opt(srv)
	}
	srv.startTime = srv.clock.Now()

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port, "local_ip", s.localIP)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// BeginDrain makes readiness fail so load balancers stop routing here.
func (s *Server) BeginDrain() {
	s.draining.Store(true)
}

// ShutdownRequested is closed once a client has asked the server to shut down.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownCh
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

func (s *Server) checkNotDraining(context.Context) error {
	if s.draining.Load() {
		return errDraining
	}
	return nil
}
