package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/zfactor/internal/zfactor"
)

// TestNew tests the Metrics constructor.
func TestNew(t *testing.T) {
	t.Parallel()
	m := New()
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Registry() == nil {
		t.Error("Registry should be initialized")
	}
}

func TestObserve(t *testing.T) {
	t.Parallel()
	m := New()

	m.Observe(zfactor.Solve(1.6, 8.82, zfactor.HallYarborough, 1e-6), time.Microsecond)
	m.Observe(zfactor.Solve(1.6, 8.82, zfactor.HallYarborough, 0), time.Millisecond)
	m.Observe(zfactor.Solve(1.6, 8.82, zfactor.Correlation(42), 1e-6), 0)

	if got := testutil.ToFloat64(m.solves.WithLabelValues("hy", "true")); got != 1 {
		t.Errorf("converged hy solves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.solves.WithLabelValues("hy", "false")); got != 1 {
		t.Errorf("non-converged hy solves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.solves.WithLabelValues("unknown", "false")); got != 1 {
		t.Errorf("unknown-correlation solves = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.iterations); got != 2 {
		t.Errorf("iteration histogram series = %d, want 2", got)
	}
}

func TestObserve_Floored(t *testing.T) {
	t.Parallel()
	m := New()
	m.Observe(zfactor.Result{Correlation: zfactor.DranchukAboukassem, Raw: -0.2, Z: zfactor.MinZ}, 0)
	if got := testutil.ToFloat64(m.floored.WithLabelValues("dak")); got != 1 {
		t.Errorf("floored_total = %v, want 1", got)
	}
	m.Observe(zfactor.Solve(2.0, 0, zfactor.HallYarborough, zfactor.DefaultTolerance), 0)
	if got := testutil.ToFloat64(m.floored.WithLabelValues("hy")); got != 1 {
		t.Errorf("floored_total for a NaN raw value = %v, want 1", got)
	}
}

// TestMetrics_WritePrometheus tests the Prometheus metrics endpoint.
func TestMetrics_WritePrometheus(t *testing.T) {
	t.Parallel()
	m := New()
	m.Observe(zfactor.Solve(2.0, 0.147, zfactor.DranchukAboukassem, 1e-6), time.Microsecond)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)

	body := rec.Body.String()
	for _, want := range []string{"zfactor_solves_total", "zfactor_iterations_bucket", "zfactor_solve_duration_seconds", "go_"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	m := New()
	m.Observe(zfactor.Solve(2.0, 0.147, zfactor.HallYarborough, 1e-6), time.Microsecond)

	path := filepath.Join(t.TempDir(), "zfactor.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `zfactor_solves_total{converged="true",correlation="hy"} 1`) {
		t.Errorf("textfile missing solve counter:\n%s", data)
	}
}
