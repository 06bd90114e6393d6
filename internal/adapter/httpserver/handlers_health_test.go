package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestHandleReadiness(t *testing.T) {
	srv, _ := newTestServer(t, &mockSessionManager{})

	rec := serve(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_Draining(t *testing.T) {
	srv, _ := newTestServer(t, &mockSessionManager{})
	srv.BeginDrain()

	rec := serve(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"shutdown"`)
}

func TestHandleReadiness_FailedCheck(t *testing.T) {
	srv := NewServer(testConfig(), &mockSessionManager{}, "10.0.0.5", prometheus.NewRegistry(),
		WithClock(clockwork.NewFakeClock()),
		WithHealthChecks(HealthCheck{Name: "keygen", Check: func(context.Context) error { return errors.New("entropy exhausted") }}),
	)

	rec := serve(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"failed_check":"keygen"`)
	assert.Contains(t, rec.Body.String(), "entropy exhausted")
}

func TestHandleVersion(t *testing.T) {
	srv, _ := newTestServer(t, &mockSessionManager{})

	rec := serve(srv, http.MethodGet, "/version", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &mockSessionManager{})
	serve(srv, http.MethodGet, "/sessions", "")

	rec := serve(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stickyapp_http_requests_total{method="GET",route="/sessions",status_code="200"} 1`)
}
