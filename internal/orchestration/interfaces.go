//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/zfactor/internal/batch"
	"github.com/agbru/zfactor/internal/zfactor"
)

// CalculationResult encapsulates the outcome of evaluating one correlation at
// one state point. It is the shared domain type between orchestration and
// presentation layers.
type CalculationResult struct {
	// Name is the display name of the correlation (e.g., "Hall-Yarborough").
	Name string
	// Key is the registry key of the solver (e.g., "hy").
	Key string
	// Tpr and Ppr locate the state point.
	Tpr, Ppr float64
	// Result is the solver output. It is the zero value if Err is set.
	Result zfactor.Result
	// Duration is the time taken by the solve.
	Duration time.Duration
	// Err is set when the solve could not be run (cancellation, unknown solver).
	Err error
}

// CaseResult pairs a batch case with the results of every correlation it ran.
type CaseResult struct {
	Case    batch.Case
	Results []CalculationResult
}

// ProgressUpdate reports how many units of work have completed.
type ProgressUpdate struct {
	Done  int
	Total int
}

// Fraction returns the completed share in [0, 1].
func (u ProgressUpdate) Fraction() float64 {
	if u.Total <= 0 {
		return 0
	}
	return float64(u.Done) / float64(u.Total)
}

// ProgressReporter defines the interface for displaying evaluation progress.
// This interface decouples the orchestration layer from the presentation layer,
// following Clean Architecture principles where business logic should not
// depend on UI concerns.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
		// Drain channel silently
	}
}

// ResultPresenter defines the interface for presenting evaluation results.
// This interface decouples the orchestration layer from presentation concerns,
// allowing different output formats (text, CSV, JSON, YAML) without modifying
// the orchestration logic.
type ResultPresenter interface {
	// PresentComparison displays the results of one or more correlations at
	// a single state point.
	PresentComparison(results []CalculationResult, out io.Writer) error

	// PresentGrid displays a grid evaluation.
	PresentGrid(grid GridResult, out io.Writer) error

	// PresentBatch displays the results of a batch file.
	PresentBatch(results []CaseResult, out io.Writer) error
}

// ErrorHandler handles evaluation errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// Observer receives every completed solve, e.g. to record metrics.
type Observer interface {
	Observe(res zfactor.Result, elapsed time.Duration)
}
