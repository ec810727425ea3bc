// Package metrics records solver activity as Prometheus metrics.
//
// Each Metrics value owns its own registry, so tests and concurrent runs do
// not collide on the global default registerer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/zfactor/internal/zfactor"
)

const namespace = "zfactor"

// Metrics holds the solver collectors and the registry they are exported from.
type Metrics struct {
	registry   *prometheus.Registry
	solves     *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
	floored    *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry that also exports Go runtime
// statistics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Number of Z-factor evaluations by correlation and convergence.",
		}, []string{"correlation", "converged"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iterations",
			Help:      "Newton-Raphson residual evaluations per solve.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50, 100, 1000},
		}, []string{"correlation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of a single solve.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"correlation"}),
		floored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "floored_total",
			Help:      "Solves whose raw result was lifted to the minimum Z.",
		}, []string{"correlation"}),
	}

	m.registry.MustRegister(
		m.solves,
		m.iterations,
		m.duration,
		m.floored,
		collectors.NewGoCollector(),
	)
	return m
}

// Observe records one solve.
func (m *Metrics) Observe(res zfactor.Result, elapsed time.Duration) {
	label := correlationLabel(res.Correlation)
	m.solves.WithLabelValues(label, strconv.FormatBool(res.Converged)).Inc()
	m.iterations.WithLabelValues(label).Observe(float64(res.Iterations))
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	if !(res.Raw >= zfactor.MinZ) {
		m.floored.WithLabelValues(label).Inc()
	}
}

// Registry exposes the underlying registry, e.g. for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics in exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WritePrometheus serves the metrics on an existing request.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.Handler().ServeHTTP(w, r)
}

// WriteTextfile writes the metrics to path in the textfile-collector format,
// replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func correlationLabel(c zfactor.Correlation) string {
	if key := c.Key(); key != "" {
		return key
	}
	return "unknown"
}
