package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/zfactor/internal/config"
	"github.com/agbru/zfactor/internal/ui"
	"github.com/agbru/zfactor/internal/zfactor"
)

// PrintExecutionConfig displays the current execution configuration to the user.
//
// Parameters:
//   - cfg: The application configuration.
//   - runID: Identifier of this run.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, runID string, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	switch cfg.Mode() {
	case config.ModeGrid:
		fmt.Fprintf(out, "Charting Z over Tpr %s[%g, %g]%s step %g and Ppr %s[%g, %g]%s step %g.\n",
			ui.ColorMagenta(), cfg.TprMin, cfg.TprMax, ui.ColorReset(), cfg.TprStep,
			ui.ColorMagenta(), cfg.PprMin, cfg.PprMax, ui.ColorReset(), cfg.PprStep)
	case config.ModeBatch:
		fmt.Fprintf(out, "Evaluating cases from %s%s%s.\n", ui.ColorMagenta(), cfg.BatchFile, ui.ColorReset())
	default:
		fmt.Fprintf(out, "Evaluating Z at %sTpr=%g, Ppr=%g%s.\n", ui.ColorMagenta(), cfg.Tpr, cfg.Ppr, ui.ColorReset())
	}
	fmt.Fprintf(out, "Tolerance %s%g%s, at most %s%d%s iterations, timeout %s%s%s.\n",
		ui.ColorCyan(), cfg.Tolerance, ui.ColorReset(),
		ui.ColorCyan(), zfactor.MaxIterations, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, run %s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset(), runID)
}

// PrintExecutionMode displays which correlations will run.
//
// Parameters:
//   - solvers: The solvers that will be executed.
//   - out: The writer for standard output.
func PrintExecutionMode(solvers []zfactor.Solver, out io.Writer) {
	var modeDesc string
	if len(solvers) > 1 {
		modeDesc = "Comparison of all correlations"
	} else if len(solvers) == 1 {
		modeDesc = fmt.Sprintf("Single evaluation with the %s%s%s correlation",
			ui.ColorGreen(), solvers[0].Name(), ui.ColorReset())
	} else {
		modeDesc = "No correlation selected"
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
