package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/zfactor/internal/batch"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/logging"
	"github.com/agbru/zfactor/internal/zfactor"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. Updates that do not fit are dropped rather than stalling a solve.
const ProgressBufferMultiplier = 5

var tracer = otel.Tracer("github.com/agbru/zfactor/internal/orchestration")

// Options carries the settings shared by every execution mode.
type Options struct {
	// Tolerance is passed to each solve. Batch cases may override it.
	Tolerance float64
	// Workers bounds the number of concurrent solves. Zero or less means one.
	Workers int
	// Logger receives a debug line per solve. Nil disables logging.
	Logger logging.Logger
	// Observer is notified of every completed solve. May be nil.
	Observer Observer
	// Progress displays progress. Nil means NullProgressReporter.
	Progress ProgressReporter
	// ProgressOut is where Progress writes.
	ProgressOut io.Writer
}

func (o Options) normalized() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Progress == nil {
		o.Progress = NullProgressReporter{}
	}
	if o.ProgressOut == nil {
		o.ProgressOut = io.Discard
	}
	return o
}

// progressTracker counts completed units and forwards them to a reporter
// without ever blocking the sender.
type progressTracker struct {
	ch    chan ProgressUpdate
	total int
	done  atomic.Int64
	wg    sync.WaitGroup
}

func startProgress(opts Options, total int) *progressTracker {
	buf := total * ProgressBufferMultiplier
	if buf > 1024 {
		buf = 1024
	}
	p := &progressTracker{ch: make(chan ProgressUpdate, buf), total: total}
	p.wg.Add(1)
	go opts.Progress.DisplayProgress(&p.wg, p.ch, opts.ProgressOut)
	return p
}

func (p *progressTracker) step() {
	done := int(p.done.Add(1))
	select {
	case p.ch <- ProgressUpdate{Done: done, Total: p.total}:
	default:
	}
}

func (p *progressTracker) stop() {
	close(p.ch)
	p.wg.Wait()
}

// solveOne runs a single solve inside a trace span and reports it to the
// logger and observer.
func solveOne(ctx context.Context, solver zfactor.Solver, tpr, ppr, tolerance float64, opts Options) CalculationResult {
	res := CalculationResult{
		Name: solver.Name(),
		Key:  solver.Correlation().Key(),
		Tpr:  tpr,
		Ppr:  ppr,
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	_, span := tracer.Start(ctx, "zfactor.solve")
	defer span.End()

	start := time.Now()
	res.Result = solver.Solve(tpr, ppr, tolerance)
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("zfactor.correlation", res.Key),
		attribute.Float64("zfactor.tpr", tpr),
		attribute.Float64("zfactor.ppr", ppr),
		attribute.Float64("zfactor.z", res.Result.Z),
		attribute.Int("zfactor.iterations", res.Result.Iterations),
		attribute.Bool("zfactor.converged", res.Result.Converged),
	)
	if !res.Result.Converged {
		span.SetStatus(codes.Error, "iteration budget exhausted")
	}

	if opts.Observer != nil {
		opts.Observer.Observe(res.Result, res.Duration)
	}
	opts.Logger.Debug("solve complete",
		logging.String("correlation", res.Key),
		logging.Float64("tpr", tpr),
		logging.Float64("ppr", ppr),
		logging.Float64("z", res.Result.Z),
		logging.Int("iterations", res.Result.Iterations),
		logging.Bool("converged", res.Result.Converged),
	)
	return res
}

// ExecuteComparison evaluates every solver at the same state point
// concurrently.
//
// Results are index-aligned with solvers. A solver that had not started when
// ctx was cancelled carries ctx.Err() in its Err field.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - solvers: The correlations to compare.
//   - tpr, ppr: The state point.
//   - opts: Tolerance, logging and progress settings.
//
// Returns:
//   - []CalculationResult: One result per solver.
func ExecuteComparison(ctx context.Context, solvers []zfactor.Solver, tpr, ppr float64, opts Options) []CalculationResult {
	opts = opts.normalized()
	results := make([]CalculationResult, len(solvers))
	progress := startProgress(opts, len(solvers))

	var g errgroup.Group
	for i, s := range solvers {
		g.Go(func() error {
			results[i] = solveOne(ctx, s, tpr, ppr, opts.Tolerance, opts)
			progress.step()
			return nil
		})
	}
	_ = g.Wait()
	progress.stop()

	opts.Logger.Info("comparison complete",
		logging.Int("solvers", len(solvers)),
		logging.Float64("tpr", tpr),
		logging.Float64("ppr", ppr),
	)
	return results
}

// ExecuteGrid evaluates one solver over every point of a grid with at most
// opts.Workers rows in flight.
//
// The returned rows follow TprAxis, each row following PprAxis. On
// cancellation the partially filled grid is returned with the context error;
// unevaluated cells carry that error in Err.
func ExecuteGrid(ctx context.Context, solver zfactor.Solver, spec GridSpec, opts Options) (GridResult, error) {
	if err := spec.Validate(); err != nil {
		return GridResult{}, err
	}
	opts = opts.normalized()

	grid := GridResult{
		Spec:    spec,
		Name:    solver.Name(),
		Key:     solver.Correlation().Key(),
		TprAxis: spec.TprAxis(),
		PprAxis: spec.PprAxis(),
	}
	grid.Rows = make([][]CalculationResult, len(grid.TprAxis))

	ctx, span := tracer.Start(ctx, "zfactor.grid")
	defer span.End()
	span.SetAttributes(
		attribute.String("zfactor.correlation", grid.Key),
		attribute.Int("zfactor.points", grid.Points()),
	)

	progress := startProgress(opts, grid.Points())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, tpr := range grid.TprAxis {
		row := make([]CalculationResult, len(grid.PprAxis))
		grid.Rows[i] = row
		g.Go(func() error {
			for j, ppr := range grid.PprAxis {
				row[j] = solveOne(gctx, solver, tpr, ppr, opts.Tolerance, opts)
				if row[j].Err != nil {
					for k := j + 1; k < len(row); k++ {
						row[k] = CalculationResult{Name: grid.Name, Key: grid.Key, Tpr: tpr, Ppr: grid.PprAxis[k], Err: row[j].Err}
					}
					return row[j].Err
				}
				progress.step()
			}
			return nil
		})
	}
	err := g.Wait()
	progress.stop()

	// Rows never scheduled because the group stopped early stay zero-valued.
	if err != nil {
		for i, row := range grid.Rows {
			for j := range row {
				if row[j].Name == "" {
					row[j] = CalculationResult{Name: grid.Name, Key: grid.Key, Tpr: grid.TprAxis[i], Ppr: grid.PprAxis[j], Err: err}
				}
			}
		}
		span.SetStatus(codes.Error, err.Error())
		return grid, apperrors.WrapError(err, "grid evaluation interrupted")
	}

	opts.Logger.Info("grid complete",
		logging.String("correlation", grid.Key),
		logging.Int("points", grid.Points()),
		logging.Int("non_converged", grid.NonConverged()),
	)
	return grid, nil
}

// ExecuteBatch evaluates every case of a batch file. Each case is expected to
// have its defaults applied already; a case whose correlation is "all" runs
// every registered solver. Unknown correlations produce a ValidationError in
// the case's single result rather than aborting the batch.
func ExecuteBatch(ctx context.Context, cases []batch.Case, factory zfactor.SolverFactory, opts Options) ([]CaseResult, error) {
	opts = opts.normalized()
	out := make([]CaseResult, len(cases))
	progress := startProgress(opts, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range cases {
		out[i].Case = c
		g.Go(func() error {
			defer progress.step()
			solvers, _ := GetSolversToRun(c.Correlation, factory)
			if len(solvers) == 0 {
				out[i].Results = []CalculationResult{{
					Name: c.Correlation, Tpr: c.Tpr, Ppr: c.Ppr,
					Err: apperrors.ValidationError{Field: "correlation", Message: fmt.Sprintf("unknown correlation %q in case %q", c.Correlation, c.Name)},
				}}
				return nil
			}
			results := make([]CalculationResult, len(solvers))
			for k, s := range solvers {
				results[k] = solveOne(gctx, s, c.Tpr, c.Ppr, c.Tolerance, opts)
				if results[k].Err != nil {
					out[i].Results = results
					return results[k].Err
				}
			}
			out[i].Results = results
			return nil
		})
	}
	err := g.Wait()
	progress.stop()
	if err != nil {
		return out, apperrors.WrapError(err, "batch evaluation interrupted")
	}

	opts.Logger.Info("batch complete", logging.Int("cases", len(cases)))
	return out, nil
}

// FirstNonConverged returns a NonConvergenceError for the first successful
// result that exhausted its iteration budget, or nil.
func FirstNonConverged(results []CalculationResult) error {
	for _, r := range results {
		if r.Err == nil && !r.Result.Converged {
			return apperrors.NonConvergenceError{
				Correlation: r.Name,
				Tpr:         r.Tpr,
				Ppr:         r.Ppr,
				Iterations:  r.Result.Iterations,
				Residual:    r.Result.Residual,
			}
		}
	}
	return nil
}

// Flatten returns the grid's cells in row-major order.
func (g GridResult) Flatten() []CalculationResult {
	out := make([]CalculationResult, 0, g.Points())
	for _, row := range g.Rows {
		out = append(out, row...)
	}
	return out
}

// Spread returns the largest difference in Z between successful results.
// It is zero when fewer than two results succeeded. NaN results make the
// spread NaN.
func Spread(results []CalculationResult) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if math.IsNaN(r.Result.Z) {
			return math.NaN()
		}
		lo = math.Min(lo, r.Result.Z)
		hi = math.Max(hi, r.Result.Z)
		n++
	}
	if n < 2 {
		return 0
	}
	return hi - lo
}

// AnalyzeComparisonResults orders the results, presents them and derives the
// exit code.
//
// Successful results come first, in registry key order. If every solve
// failed, the first error is passed to handler. In strict mode a result that
// did not converge yields ExitErrorNotConverged.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []CalculationResult, strict bool, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Key < results[j].Key
	})

	var firstError error
	successCount := 0
	for _, r := range results {
		if r.Err != nil {
			if firstError == nil {
				firstError = r.Err
			}
			continue
		}
		successCount++
	}

	if err := presenter.PresentComparison(results, out); err != nil {
		return handler.HandleError(err, 0, out)
	}

	if successCount == 0 {
		if firstError == nil {
			firstError = errors.New("no correlation selected")
		}
		fmt.Fprintf(out, "\nGlobal Status: Failure. No correlation could be evaluated.\n")
		return handler.HandleError(firstError, 0, out)
	}

	if strict {
		if err := FirstNonConverged(results); err != nil {
			return handler.HandleError(err, 0, out)
		}
	}
	return apperrors.ExitSuccess
}
