// Package server exposes Z-factor evaluation over HTTP.
//
// Routes:
//
//	GET /zfactor?tpr=1.6&ppr=8.82[&correlation=hy|dak|all][&tolerance=1e-6]
//	GET /grid?correlation=dak&tpr-min=..&tpr-max=..&tpr-step=..&ppr-min=..&ppr-max=..&ppr-step=..
//	GET /health
//	GET /metrics
//
// Responses use the same JSON report layout as the command-line -format json.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agbru/zfactor/internal/cli"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/logging"
	"github.com/agbru/zfactor/internal/metrics"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/zfactor"
)

// Timeouts applied to every connection.
const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// Tolerance is used when a request does not set one.
	Tolerance float64
	// DefaultCorrelation is used when a request does not name one.
	DefaultCorrelation string
	// Workers bounds grid concurrency per request.
	Workers int
	// RequestTimeout bounds each evaluation.
	RequestTimeout time.Duration
	Security       SecurityConfig
}

// Server serves Z-factor requests.
type Server struct {
	cfg         Config
	factory     zfactor.SolverFactory
	metrics     *metrics.Metrics
	httpMetrics *Metrics
	logger      logging.Logger
	mux         *http.ServeMux
}

// New creates a server. Solver metrics go to m, which also hosts the HTTP
// metrics and backs /metrics.
func New(cfg Config, factory zfactor.SolverFactory, m *metrics.Metrics, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = zfactor.DefaultTolerance
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = writeTimeout
	}
	if cfg.Security.MaxGridPoints <= 0 {
		cfg.Security.MaxGridPoints = DefaultSecurityConfig().MaxGridPoints
	}
	s := &Server{
		cfg:         cfg,
		factory:     factory,
		metrics:     m,
		httpMetrics: NewMetrics(m.Registry()),
		logger:      logger,
		mux:         http.NewServeMux(),
	}
	s.route("/zfactor", s.handleZFactor)
	s.route("/grid", s.handleGrid)
	s.route("/health", s.handleHealth)
	s.route("/metrics", s.handleMetrics)
	return s
}

func (s *Server) route(path string, h http.HandlerFunc) {
	s.mux.HandleFunc(path, SecurityMiddleware(s.cfg.Security, s.metricsMiddleware(path, h)))
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return apperrors.WrapError(err, "listening on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return apperrors.WrapError(err, "shutting down")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) options() orchestration.Options {
	return orchestration.Options{
		Tolerance: s.cfg.Tolerance,
		Workers:   s.cfg.Workers,
		Logger:    s.logger,
		Observer:  s.metrics,
	}
}

func (s *Server) handleZFactor(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	q := r.URL.Query()

	tpr, err := floatParam(q, "tpr", math.NaN())
	if err == nil && !(tpr > 0) {
		err = apperrors.ValidationError{Field: "tpr", Message: "must be positive"}
	}
	var ppr float64
	if err == nil {
		ppr, err = floatParam(q, "ppr", math.NaN())
	}
	if err == nil && !(ppr >= 0) {
		err = apperrors.ValidationError{Field: "ppr", Message: "must not be negative"}
	}
	opts := s.options()
	if err == nil {
		opts.Tolerance, err = s.tolerance(q)
	}
	var solvers []zfactor.Solver
	if err == nil {
		solvers, err = s.solvers(q)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	results := orchestration.ExecuteComparison(ctx, solvers, tpr, ppr, opts)

	report := cli.Report{Mode: "single", Results: make([]cli.Record, len(results))}
	for i, res := range results {
		report.Results[i] = cli.NewRecord("", res)
	}
	s.writeReport(w, report)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	q := r.URL.Query()

	var spec orchestration.GridSpec
	var err error
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"tpr-min", &spec.TprMin}, {"tpr-max", &spec.TprMax}, {"tpr-step", &spec.TprStep},
		{"ppr-min", &spec.PprMin}, {"ppr-max", &spec.PprMax}, {"ppr-step", &spec.PprStep},
	} {
		if *p.dst, err = floatParam(q, p.name, math.NaN()); err != nil {
			break
		}
	}
	if err == nil {
		err = spec.Validate()
	}
	if err == nil && spec.Points() > s.cfg.Security.MaxGridPoints {
		err = apperrors.ValidationError{Field: "grid", Message: fmt.Sprintf("%d points exceeds the limit of %d", spec.Points(), s.cfg.Security.MaxGridPoints)}
	}
	opts := s.options()
	if err == nil {
		opts.Tolerance, err = s.tolerance(q)
	}
	var solvers []zfactor.Solver
	if err == nil {
		solvers, err = s.solvers(q)
	}
	if err == nil && len(solvers) != 1 {
		err = apperrors.ValidationError{Field: "correlation", Message: "a grid takes exactly one correlation"}
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	grid, err := orchestration.ExecuteGrid(ctx, solvers[0], spec, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsContextError(err) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err)
		return
	}
	s.writeReport(w, cli.Report{Mode: "grid", Grid: cli.NewGridSummary(grid)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"correlations": s.factory.List(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD, OPTIONS")
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

// solvers resolves the correlation parameter, defaulting to the configured
// correlation.
func (s *Server) solvers(q url.Values) ([]zfactor.Solver, error) {
	name := q.Get("correlation")
	if name == "" {
		name = s.cfg.DefaultCorrelation
	}
	solvers, _ := orchestration.GetSolversToRun(name, s.factory)
	if len(solvers) == 0 {
		return nil, apperrors.ValidationError{Field: "correlation", Message: fmt.Sprintf("unknown correlation %q", name)}
	}
	return solvers, nil
}

func (s *Server) tolerance(q url.Values) (float64, error) {
	tol, err := floatParam(q, "tolerance", s.cfg.Tolerance)
	if err != nil {
		return 0, err
	}
	if !(tol > 0) {
		return 0, apperrors.ValidationError{Field: "tolerance", Message: "must be positive"}
	}
	return tol, nil
}

// floatParam parses a finite float query parameter. A missing parameter
// yields def, or an error when def is NaN.
func floatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		if math.IsNaN(def) {
			return 0, apperrors.ValidationError{Field: name, Message: "is required"}
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("invalid number %q", raw)}
	}
	return v, nil
}

func (s *Server) writeReport(w http.ResponseWriter, report cli.Report) {
	w.Header().Set("Content-Type", "application/json")
	if err := cli.WriteJSON(w, report); err != nil {
		s.logger.Error("writing response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request rejected", logging.Int("status", status), logging.Err(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
