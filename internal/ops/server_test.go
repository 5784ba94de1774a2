package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func TestHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)

	ok := NewServer(reg, m, map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
	}, logger.NewNop())
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body)
	}

	bad := NewServer(prometheus.NewRegistry(), nil, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	}, logger.NewNop())
	rec = httptest.NewRecorder()
	bad.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("want 503 with reason, got %d: %s", rec.Code, rec.Body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)
	e := NewServer(reg, m, nil, logger.NewNop())

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "test_http_requests_total") {
		t.Fatalf("metrics not exposed: %d %s", rec.Code, rec.Body)
	}
}
