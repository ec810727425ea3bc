package orchestration

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agbru/zfactor/internal/batch"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/zfactor"
)

// fakeSolver is a Solver whose output is controlled by the test.
type fakeSolver struct {
	corr  zfactor.Correlation
	z     float64
	calls atomic.Int64
}

func (f *fakeSolver) Solve(tpr, ppr, tolerance float64) zfactor.Result {
	f.calls.Add(1)
	return zfactor.Result{Correlation: f.corr, Z: f.z, Raw: f.z, Iterations: 3, Converged: true}
}

func (f *fakeSolver) Name() string                     { return f.corr.String() }
func (f *fakeSolver) Correlation() zfactor.Correlation { return f.corr }

// countingObserver records how many solves it saw.
type countingObserver struct {
	n atomic.Int64
}

func (o *countingObserver) Observe(zfactor.Result, time.Duration) { o.n.Add(1) }

func TestExecuteComparison(t *testing.T) {
	t.Parallel()
	solvers := []zfactor.Solver{
		zfactor.NewSolver(zfactor.HallYarborough),
		zfactor.NewSolver(zfactor.DranchukAboukassem),
	}
	obs := &countingObserver{}
	results := ExecuteComparison(context.Background(), solvers, 1.5, 2.0, Options{Tolerance: 1e-6, Observer: obs})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, r.Err)
		}
		want := zfactor.ZFactor(1.5, 2.0, solvers[i].Correlation(), 1e-6)
		if r.Result.Z != want {
			t.Errorf("result %d: Z = %v, want %v", i, r.Result.Z, want)
		}
		if r.Key != solvers[i].Correlation().Key() {
			t.Errorf("result %d: key = %q", i, r.Key)
		}
		if r.Tpr != 1.5 || r.Ppr != 2.0 {
			t.Errorf("result %d: state point not recorded", i)
		}
	}
	if got := obs.n.Load(); got != 2 {
		t.Errorf("observer saw %d solves, want 2", got)
	}
}

func TestExecuteComparisonCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSolver{corr: zfactor.HallYarborough, z: 0.9}
	results := ExecuteComparison(ctx, []zfactor.Solver{s}, 1.5, 2.0, Options{Tolerance: 1e-6})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
	if s.calls.Load() != 0 {
		t.Error("solver should not run after cancellation")
	}
}

func TestExecuteComparisonEmpty(t *testing.T) {
	t.Parallel()
	results := ExecuteComparison(context.Background(), nil, 1.5, 2.0, Options{})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestExecuteGrid(t *testing.T) {
	t.Parallel()
	spec := GridSpec{TprMin: 1.2, TprMax: 1.6, TprStep: 0.2, PprMin: 0.5, PprMax: 2.5, PprStep: 0.5}
	solver := zfactor.NewSolver(zfactor.DranchukAboukassem)

	grid, err := ExecuteGrid(context.Background(), solver, spec, Options{Tolerance: 1e-6, Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid.Rows) != 3 || len(grid.PprAxis) != 5 {
		t.Fatalf("unexpected shape %dx%d", len(grid.Rows), len(grid.PprAxis))
	}
	for i, row := range grid.Rows {
		for j, cell := range row {
			want := zfactor.ZFactor(grid.TprAxis[i], grid.PprAxis[j], zfactor.DranchukAboukassem, 1e-6)
			if cell.Err != nil || cell.Result.Z != want {
				t.Errorf("cell (%d,%d) = %+v, want Z %v", i, j, cell, want)
			}
			if cell.Tpr != grid.TprAxis[i] || cell.Ppr != grid.PprAxis[j] {
				t.Errorf("cell (%d,%d) out of row-major order", i, j)
			}
		}
	}
	if grid.NonConverged() != 0 {
		t.Errorf("expected every point to converge, %d did not", grid.NonConverged())
	}
	if got := len(grid.Flatten()); got != 15 {
		t.Errorf("Flatten returned %d cells, want 15", got)
	}
}

func TestExecuteGridInvalidSpec(t *testing.T) {
	t.Parallel()
	spec := GridSpec{TprMin: 1.2, TprMax: 1.0, TprStep: 0.1, PprMin: 0, PprMax: 1, PprStep: 0.5}
	_, err := ExecuteGrid(context.Background(), zfactor.NewSolver(zfactor.HallYarborough), spec, Options{})
	var ve apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExecuteGridCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spec := GridSpec{TprMin: 1, TprMax: 2, TprStep: 0.5, PprMin: 0, PprMax: 1, PprStep: 0.5}

	grid, err := ExecuteGrid(ctx, &fakeSolver{corr: zfactor.HallYarborough}, spec, Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, cell := range grid.Flatten() {
		if cell.Err == nil {
			t.Errorf("cell at tpr=%v ppr=%v has no error", cell.Tpr, cell.Ppr)
		}
	}
}

func TestExecuteGridRespectsWorkerLimit(t *testing.T) {
	t.Parallel()
	var inFlight, peak atomic.Int64
	solver := &trackingSolver{inFlight: &inFlight, peak: &peak}
	spec := GridSpec{TprMin: 1, TprMax: 2, TprStep: 0.1, PprMin: 0, PprMax: 1, PprStep: 0.25}

	if _, err := ExecuteGrid(context.Background(), solver, spec, Options{Workers: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency %d exceeds worker limit 3", p)
	}
}

type trackingSolver struct {
	inFlight, peak *atomic.Int64
}

func (s *trackingSolver) Solve(tpr, ppr, tolerance float64) zfactor.Result {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(100 * time.Microsecond)
	s.inFlight.Add(-1)
	return zfactor.Result{Z: 1, Converged: true}
}

func (s *trackingSolver) Name() string                     { return "tracking" }
func (s *trackingSolver) Correlation() zfactor.Correlation { return zfactor.HallYarborough }

func TestGridSpecAxes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		spec      GridSpec
		tprPoints int
		pprPoints int
		lastPpr   float64
	}{
		{"decimal steps reach endpoint", GridSpec{1.05, 3.0, 0.05, 0.2, 15.0, 0.2}, 40, 75, 15.0},
		{"single point", GridSpec{1.5, 1.5, 0.1, 2, 2, 1}, 1, 1, 2},
		{"max not on step", GridSpec{1.0, 1.25, 0.1, 0, 1, 0.3}, 3, 4, 0.8999999999999999},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.spec.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			tpr, ppr := tc.spec.TprAxis(), tc.spec.PprAxis()
			if len(tpr) != tc.tprPoints || len(ppr) != tc.pprPoints {
				t.Fatalf("axes %d x %d, want %d x %d", len(tpr), len(ppr), tc.tprPoints, tc.pprPoints)
			}
			if math.Abs(ppr[len(ppr)-1]-tc.lastPpr) > 1e-9 {
				t.Errorf("last ppr %v, want %v", ppr[len(ppr)-1], tc.lastPpr)
			}
			if tc.spec.Points() != tc.tprPoints*tc.pprPoints {
				t.Errorf("Points() = %d", tc.spec.Points())
			}
		})
	}
}

func TestGridSpecValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		spec  GridSpec
		field string
	}{
		{"zero step", GridSpec{1, 2, 0, 0, 1, 0.5}, "tpr-step"},
		{"negative step", GridSpec{1, 2, 0.1, 0, 1, -1}, "ppr-step"},
		{"inverted", GridSpec{1, 2, 0.1, 3, 1, 0.5}, "ppr-max"},
		{"nan", GridSpec{math.NaN(), 2, 0.1, 0, 1, 0.5}, "tpr"},
		{"too many points", GridSpec{0, 1000, 0.001, 0, 1000, 0.001}, "grid"},
		{"tiny step", GridSpec{1, 2, 1e-300, 1, 1, 1}, "grid"},
		{"huge range", GridSpec{-1e308, 1e308, 1, 1, 1, 1}, "grid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var ve apperrors.ValidationError
			if err := tc.spec.Validate(); !errors.As(err, &ve) || ve.Field != tc.field {
				t.Errorf("Validate() = %v, want field %q", err, tc.field)
			}
		})
	}
}

func TestExecuteGridTinyStep(t *testing.T) {
	t.Parallel()
	spec := GridSpec{TprMin: 1, TprMax: 2, TprStep: 1e-300, PprMin: 1, PprMax: 1, PprStep: 1}
	if n := spec.Points(); n <= 0 || n > maxGridPoints+1 {
		t.Errorf("Points() = %d, want a saturated positive count", n)
	}
	_, err := ExecuteGrid(context.Background(), zfactor.NewSolver(zfactor.HallYarborough), spec, Options{})
	var ve apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("ExecuteGrid error = %v, want ValidationError", err)
	}
}

func TestExecuteBatch(t *testing.T) {
	t.Parallel()
	cases := []batch.Case{
		{Name: "a", Tpr: 1.5, Ppr: 2.0, Correlation: "hy", Tolerance: 1e-6},
		{Name: "b", Tpr: 2.0, Ppr: 1.0, Correlation: "all", Tolerance: 1e-8},
		{Name: "c", Tpr: 2.0, Ppr: 1.0, Correlation: "bogus", Tolerance: 1e-6},
	}
	out, err := ExecuteBatch(context.Background(), cases, zfactor.NewDefaultFactory(), Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 case results, got %d", len(out))
	}
	if len(out[0].Results) != 1 || out[0].Results[0].Result.Z != zfactor.ZFactor(1.5, 2.0, zfactor.HallYarborough, 1e-6) {
		t.Errorf("case a: %+v", out[0].Results)
	}
	if len(out[1].Results) != 2 {
		t.Errorf("case b: expected both correlations, got %d", len(out[1].Results))
	}
	var ve apperrors.ValidationError
	if len(out[2].Results) != 1 || !errors.As(out[2].Results[0].Err, &ve) {
		t.Errorf("case c: expected validation error, got %+v", out[2].Results)
	}
}

func TestFirstNonConverged(t *testing.T) {
	t.Parallel()
	ok := CalculationResult{Name: "HY", Result: zfactor.Result{Converged: true}}
	bad := CalculationResult{Name: "DAK", Tpr: 1.1, Ppr: 3, Result: zfactor.Result{Iterations: 1000, Residual: 0.5}}
	failed := CalculationResult{Name: "X", Err: errors.New("boom")}

	if err := FirstNonConverged([]CalculationResult{ok, failed}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := FirstNonConverged([]CalculationResult{ok, bad})
	var nce apperrors.NonConvergenceError
	if !errors.As(err, &nce) || nce.Correlation != "DAK" || nce.Iterations != 1000 {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSpread(t *testing.T) {
	t.Parallel()
	mk := func(z float64) CalculationResult { return CalculationResult{Result: zfactor.Result{Z: z}} }
	if s := Spread([]CalculationResult{mk(0.9), mk(0.95), {Err: errors.New("x")}}); math.Abs(s-0.05) > 1e-15 {
		t.Errorf("Spread = %v, want 0.05", s)
	}
	if s := Spread([]CalculationResult{mk(0.9)}); s != 0 {
		t.Errorf("single result spread = %v, want 0", s)
	}
	if s := Spread([]CalculationResult{mk(0.9), mk(math.NaN())}); !math.IsNaN(s) {
		t.Errorf("NaN spread = %v", s)
	}
}

func TestNullProgressReporterDrains(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{Done: 1, Total: 3}
	ch <- ProgressUpdate{Done: 2, Total: 3}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		NullProgressReporter{}.DisplayProgress(&wg, ch, io.Discard)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not return after channel close")
	}
	wg.Wait()
}

func TestProgressUpdateFraction(t *testing.T) {
	t.Parallel()
	if f := (ProgressUpdate{Done: 1, Total: 4}).Fraction(); f != 0.25 {
		t.Errorf("Fraction = %v", f)
	}
	if f := (ProgressUpdate{}).Fraction(); f != 0 {
		t.Errorf("empty Fraction = %v", f)
	}
}

// TestSlowReporterDoesNotBlockSolves checks that a reporter that never reads
// cannot stall the solves feeding it.
func TestSlowReporterDoesNotBlockSolves(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan ProgressUpdate, _ io.Writer) {
		defer wg.Done()
		<-release
		for range ch {
		}
	})
	spec := GridSpec{TprMin: 1, TprMax: 3, TprStep: 0.01, PprMin: 0, PprMax: 1, PprStep: 0.05}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ExecuteGrid(context.Background(), &fakeSolver{corr: zfactor.HallYarborough, z: 1}, spec,
			Options{Workers: 4, Progress: reporter})
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("grid evaluation blocked on progress reporting")
	}
}
