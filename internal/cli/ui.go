package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner goroutine reads Suffix concurrently, so it is guarded by the
// spinner's own lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a progress bar and ETA until
// progressChan is closed, then prints a completion line.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, out io.Writer) {
	defer wg.Done()

	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var tracker *format.ProgressWithETA
	last := orchestration.ProgressUpdate{}
	start := time.Now()

	suffix := func(frac float64, eta time.Duration) string {
		return fmt.Sprintf(" %d/%d %s", last.Done, last.Total, format.FormatProgressBarWithETA(frac, eta, ProgressBarWidth))
	}

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				if last.Total > 0 {
					fmt.Fprintf(out, "%s✓%s %d evaluations in %s\n",
						ui.ColorGreen(), ui.ColorReset(), last.Done, format.FormatExecutionDuration(time.Since(start)))
				}
				return
			}
			if tracker == nil {
				tracker = format.NewProgressWithETA(update.Total)
			}
			if update.Done < last.Done {
				continue
			}
			last = update
			s.UpdateSuffix(suffix(tracker.Update(update.Done)))
		case <-ticker.C:
			if tracker != nil {
				s.UpdateSuffix(suffix(tracker.Fraction(), tracker.GetETA()))
			}
		}
	}
}

// DisplayResult prints a single evaluation as a short report.
func DisplayResult(r orchestration.CalculationResult, verbose, details bool, out io.Writer) {
	if r.Err != nil {
		fmt.Fprintf(out, "%s%s failed: %v%s\n", ui.ColorRed(), r.Name, r.Err, ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "\nZ-factor (%s%s%s) at Tpr=%s, Ppr=%s: %s%s%s\n",
		ui.ColorCyan(), r.Name, ui.ColorReset(),
		format.FormatFloat(r.Tpr), format.FormatFloat(r.Ppr),
		ui.ColorGreen(), formatZ(r.Result.Z, verbose), ui.ColorReset())

	if details {
		fmt.Fprintf(out, "  Raw value:   %s\n", formatZ(r.Result.Raw, verbose))
		fmt.Fprintf(out, "  Iterations:  %d\n", r.Result.Iterations)
		fmt.Fprintf(out, "  Residual:    %s\n", format.FormatFloat(r.Result.Residual))
		fmt.Fprintf(out, "  Duration:    %s\n", format.FormatExecutionDuration(r.Duration))
	}
	if !r.Result.Converged {
		fmt.Fprintf(out, "%sWarning:%s iteration budget exhausted after %d evaluations; the last estimate is shown.\n",
			ui.ColorYellow(), ui.ColorReset(), r.Result.Iterations)
	}
}
