package httpserver

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
)

type mockSessionManager struct {
	createFn      func(ctx context.Context, initMessage string, kind domain.Kind) (domain.SessionID, string, error)
	dispatchFn    func(ctx context.Context, id domain.SessionID, message string) (domain.Reply, error)
	listFn        func() []domain.SessionID
	shutdownAllFn func() int
}

func (m *mockSessionManager) Create(ctx context.Context, initMessage string, kind domain.Kind) (domain.SessionID, string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, initMessage, kind)
	}
	return "open0123", `{"status":true,"status_message":"session initialized","value":0}`, nil
}

func (m *mockSessionManager) Dispatch(ctx context.Context, id domain.SessionID, message string) (domain.Reply, error) {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, id, message)
	}
	return domain.Reply{}, domain.ErrSessionNotFound
}

func (m *mockSessionManager) List() []domain.SessionID {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil
}

func (m *mockSessionManager) ShutdownAll() int {
	if m.shutdownAllFn != nil {
		return m.shutdownAllFn()
	}
	return 0
}

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		Port:                   "8080",
		LogLevel:               "info",
		LogFormat:              "text",
		RequestTimeout:         time.Second,
		MaxConcurrentRequests:  8,
		RateLimitBurst:         50,
		SessionMailboxCapacity: 100,
		SessionStopTimeout:     time.Second,
	}
}

type testServerOption func(cfg *config.Config)

func newTestServer(t *testing.T, sessions sessionManager, opts ...testServerOption) (*Server, *clockwork.FakeClock) {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	clock := clockwork.NewFakeClockAt(testStart)
	srv := NewServer(cfg, sessions, "10.0.0.5", prometheus.NewRegistry(), WithClock(clock))
	return srv, clock
}

// serve runs a request through the full middleware stack.
func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
