package app

import (
	"context"
	"io"
	"time"

	"github.com/agbru/zfactor/internal/batch"
	"github.com/agbru/zfactor/internal/cli"
	"github.com/agbru/zfactor/internal/config"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/logging"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/ui"
)

func (a *Application) presenter() cli.CLIResultPresenter {
	return cli.CLIResultPresenter{
		Format:  a.Config.Format,
		RunID:   a.RunID,
		Verbose: a.Config.Verbose,
		Details: a.Config.Details,
		Quiet:   a.Config.Quiet,
	}
}

// textBanner reports whether the execution banner should be printed: it
// would corrupt machine-readable output on stdout.
func (a *Application) textBanner() bool {
	return !a.Config.Quiet && a.Config.Format == config.FormatText
}

func (a *Application) options() orchestration.Options {
	opts := orchestration.Options{
		Tolerance: a.Config.Tolerance,
		Workers:   a.Config.Workers,
		Logger:    a.Logger,
		Observer:  a.Metrics,
	}
	if !a.Config.Quiet {
		opts.Progress = cli.CLIProgressReporter{}
		opts.ProgressOut = a.ErrWriter
	}
	return opts
}

func (a *Application) gridSpec() orchestration.GridSpec {
	return orchestration.GridSpec{
		TprMin: a.Config.TprMin, TprMax: a.Config.TprMax, TprStep: a.Config.TprStep,
		PprMin: a.Config.PprMin, PprMax: a.Config.PprMax, PprStep: a.Config.PprStep,
	}
}

// runSingle evaluates one or all correlations at the configured state point.
func (a *Application) runSingle(ctx context.Context, out io.Writer) int {
	solvers, _ := orchestration.GetSolversToRun(a.Config.Correlation, a.Factory)
	if a.textBanner() {
		cli.PrintExecutionConfig(a.Config, a.RunID, out)
		cli.PrintExecutionMode(solvers, out)
	}

	opts := a.options()
	// A handful of microsecond solves does not need a spinner.
	opts.Progress = nil
	results := orchestration.ExecuteComparison(ctx, solvers, a.Config.Tpr, a.Config.Ppr, opts)

	p := a.presenter()
	code := orchestration.AnalyzeComparisonResults(results, a.Config.Strict, p, p, out)
	if saved := a.saveResults(out, "single", func(w io.Writer) error {
		return p.PresentComparison(results, w)
	}); saved != apperrors.ExitSuccess && code == apperrors.ExitSuccess {
		code = saved
	}
	return code
}

// runGrid charts Z over the configured grid for each selected correlation.
func (a *Application) runGrid(ctx context.Context, out io.Writer) int {
	spec := a.gridSpec()
	solvers, _ := orchestration.GetSolversToRun(a.Config.Correlation, a.Factory)
	if a.textBanner() {
		cli.PrintExecutionConfig(a.Config, a.RunID, out)
		cli.PrintExecutionMode(solvers, out)
	}

	p := a.presenter()
	var grids []orchestration.GridResult
	for _, solver := range solvers {
		start := time.Now()
		grid, err := orchestration.ExecuteGrid(ctx, solver, spec, a.options())
		if err != nil {
			a.Logger.Error("grid evaluation failed", err, logging.String("correlation", solver.Correlation().Key()))
			return p.HandleError(err, time.Since(start), out)
		}
		if err := p.PresentGrid(grid, out); err != nil {
			return p.HandleError(err, 0, out)
		}
		grids = append(grids, grid)
	}

	if code := a.saveResults(out, "grid", func(w io.Writer) error {
		for _, g := range grids {
			if err := p.PresentGrid(g, w); err != nil {
				return err
			}
		}
		return nil
	}); code != apperrors.ExitSuccess {
		return code
	}

	if a.Config.Strict {
		for _, g := range grids {
			if err := orchestration.FirstNonConverged(g.Flatten()); err != nil {
				return p.HandleError(err, 0, out)
			}
		}
	}
	return apperrors.ExitSuccess
}

// runBatch evaluates the cases of the configured batch file.
func (a *Application) runBatch(ctx context.Context, out io.Writer) int {
	p := a.presenter()
	cases, err := batch.Load(a.Config.BatchFile)
	if err != nil {
		a.Logger.Error("loading batch file", err, logging.String("path", a.Config.BatchFile))
		return p.HandleError(err, 0, out)
	}
	for i := range cases {
		cases[i] = cases[i].WithDefaults(a.Config.Correlation, a.Config.Tolerance)
	}
	if a.textBanner() {
		cli.PrintExecutionConfig(a.Config, a.RunID, out)
	}

	start := time.Now()
	results, err := orchestration.ExecuteBatch(ctx, cases, a.Factory, a.options())
	if err != nil {
		return p.HandleError(err, time.Since(start), out)
	}
	if err := p.PresentBatch(results, out); err != nil {
		return p.HandleError(err, 0, out)
	}
	if code := a.saveResults(out, "batch", func(w io.Writer) error {
		return p.PresentBatch(results, w)
	}); code != apperrors.ExitSuccess {
		return code
	}

	var all []orchestration.CalculationResult
	for _, cr := range results {
		all = append(all, cr.Results...)
	}
	for _, r := range all {
		if r.Err != nil {
			return p.HandleError(r.Err, 0, out)
		}
	}
	if a.Config.Strict {
		if err := orchestration.FirstNonConverged(all); err != nil {
			return p.HandleError(err, 0, out)
		}
	}
	return apperrors.ExitSuccess
}

// saveResults writes results to the configured output file without colors.
func (a *Application) saveResults(out io.Writer, mode string, render func(io.Writer) error) int {
	if a.Config.OutputFile == "" {
		return apperrors.ExitSuccess
	}

	prev := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(prev)

	header := cli.OutputHeader{
		RunID:       a.RunID,
		Mode:        mode,
		Correlation: a.Config.Correlation,
		Tolerance:   a.Config.Tolerance,
	}
	if err := cli.WriteResultsToFile(a.Config.OutputFile, a.Config.Format, header, render); err != nil {
		a.Logger.Error("saving results", err, logging.String("path", a.Config.OutputFile))
		return a.presenter().HandleError(err, 0, out)
	}
	if a.textBanner() {
		cli.DisplaySavedTo(out, a.Config.OutputFile)
	}
	return apperrors.ExitSuccess
}
