package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewMetrics tests that the HTTP collectors register cleanly.
func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "zfactor_http_active_requests" {
			found = true
		}
	}
	if !found {
		t.Error("zfactor_http_active_requests should be registered")
	}
}

// TestMetricsMiddleware tests that requests are counted by route and code.
func TestMetricsMiddleware(t *testing.T) {
	s := &Server{httpMetrics: NewMetrics(prometheus.NewRegistry())}

	ok := s.metricsMiddleware("/health", func(w http.ResponseWriter, r *http.Request) {
		if got := testutil.ToFloat64(s.httpMetrics.activeRequests); got != 1 {
			t.Errorf("active requests during request = %v, want 1", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	bad := s.metricsMiddleware("/zfactor", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	ok(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))
	ok(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))
	bad(httptest.NewRecorder(), httptest.NewRequest("GET", "/zfactor", http.NoBody))

	if got := testutil.ToFloat64(s.httpMetrics.requestsTotal.WithLabelValues("/health", "200")); got != 2 {
		t.Errorf("/health 200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.httpMetrics.requestsTotal.WithLabelValues("/zfactor", "400")); got != 1 {
		t.Errorf("/zfactor 400 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.httpMetrics.activeRequests); got != 0 {
		t.Errorf("active requests after = %v, want 0", got)
	}
}

// TestStatusRecorder_DefaultsToOK tests that a handler writing only a body
// is recorded as 200.
func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	s := &Server{httpMetrics: NewMetrics(prometheus.NewRegistry())}
	h := s.metricsMiddleware("/x", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/x", http.NoBody))

	if !strings.Contains(rec.Body.String(), "hello") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := testutil.ToFloat64(s.httpMetrics.requestsTotal.WithLabelValues("/x", "200")); got != 1 {
		t.Errorf("/x 200 count = %v, want 1", got)
	}
}
