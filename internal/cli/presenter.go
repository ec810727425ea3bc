package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/zfactor/internal/config"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
// It wraps the DisplayProgress function to provide a spinner and progress bar
// display during grid and batch runs.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing evaluations.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, out io.Writer) {
	DisplayProgress(wg, progressChan, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
// Text output is rendered as tables; csv, json and yaml produce
// machine-readable documents.
type CLIResultPresenter struct {
	// Format is one of the config.Format* constants. Empty means text.
	Format string
	// RunID tags json and yaml documents.
	RunID string
	// Verbose prints values at full precision.
	Verbose bool
	// Details adds iteration diagnostics to text output.
	Details bool
	// Quiet prints bare values in text mode.
	Quiet bool
}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentComparison displays one or more correlations evaluated at the same
// state point. A single text result is shown as a short report instead of a
// table.
func (p CLIResultPresenter) PresentComparison(results []orchestration.CalculationResult, out io.Writer) error {
	switch p.Format {
	case config.FormatCSV:
		return WriteCSV(out, recordsOf("", results))
	case config.FormatJSON:
		return WriteJSON(out, Report{RunID: p.RunID, Mode: "single", Results: recordsOf("", results)})
	case config.FormatYAML:
		return WriteYAML(out, Report{RunID: p.RunID, Mode: "single", Results: recordsOf("", results)})
	}

	if p.Quiet {
		for _, r := range results {
			if r.Err == nil {
				fmt.Fprintln(out, formatZ(r.Result.Z, true))
			}
		}
		return nil
	}
	if len(results) == 1 {
		DisplayResult(results[0], p.Verbose, p.Details, out)
		return nil
	}

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	fmt.Fprintln(out, RenderComparisonTable(results, p.Verbose, p.Details))
	if spread := orchestration.Spread(results); spread != 0 {
		fmt.Fprintf(out, "Correlation spread: %s%s%s\n", ui.ColorYellow(), formatZ(spread, p.Verbose), ui.ColorReset())
	}
	return nil
}

// PresentGrid displays a grid evaluation.
func (p CLIResultPresenter) PresentGrid(grid orchestration.GridResult, out io.Writer) error {
	switch p.Format {
	case config.FormatCSV:
		return WriteCSV(out, recordsOf("", grid.Flatten()))
	case config.FormatJSON:
		return WriteJSON(out, Report{RunID: p.RunID, Mode: "grid", Grid: NewGridSummary(grid), Results: recordsOf("", grid.Flatten())})
	case config.FormatYAML:
		return WriteYAML(out, Report{RunID: p.RunID, Mode: "grid", Grid: NewGridSummary(grid), Results: recordsOf("", grid.Flatten())})
	}

	if !p.Quiet {
		fmt.Fprintf(out, "\n--- %s Z-factor chart (%d points) ---\n", grid.Name, grid.Points())
	}
	fmt.Fprintln(out, RenderGridTable(grid, p.Verbose))
	if n := grid.NonConverged(); n > 0 && !p.Quiet {
		fmt.Fprintf(out, "%s* %d point(s) did not converge within the iteration budget.%s\n", ui.ColorYellow(), n, ui.ColorReset())
	}
	return nil
}

// PresentBatch displays the results of a batch file.
func (p CLIResultPresenter) PresentBatch(results []orchestration.CaseResult, out io.Writer) error {
	var records []Record
	for _, cr := range results {
		records = append(records, recordsOf(cr.Case.Name, cr.Results)...)
	}
	switch p.Format {
	case config.FormatCSV:
		return WriteCSV(out, records)
	case config.FormatJSON:
		return WriteJSON(out, Report{RunID: p.RunID, Mode: "batch", Results: records})
	case config.FormatYAML:
		return WriteYAML(out, Report{RunID: p.RunID, Mode: "batch", Results: records})
	}

	if !p.Quiet {
		fmt.Fprintf(out, "\n--- Batch Results (%d cases) ---\n", len(results))
	}
	fmt.Fprintln(out, RenderBatchTable(results, p.Verbose, p.Details))
	return nil
}

// HandleError handles evaluation errors and returns an appropriate exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, ui.Provider{})
}

func recordsOf(caseName string, results []orchestration.CalculationResult) []Record {
	records := make([]Record, len(results))
	for i, r := range results {
		records[i] = NewRecord(caseName, r)
	}
	return records
}
