// Package app wires configuration, solvers, orchestration and presentation
// into the zfactor command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agbru/zfactor/internal/cli"
	"github.com/agbru/zfactor/internal/config"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/logging"
	"github.com/agbru/zfactor/internal/metrics"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/server"
	"github.com/agbru/zfactor/internal/tui"
	"github.com/agbru/zfactor/internal/ui"
	"github.com/agbru/zfactor/internal/zfactor"
)

// Application represents the zfactor application instance.
type Application struct {
	Config    config.AppConfig
	Factory   zfactor.SolverFactory
	ErrWriter io.Writer
	Logger    logging.Logger
	Metrics   *metrics.Metrics
	// RunID identifies this invocation in logs and output files.
	RunID string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom SolverFactory for the application.
func WithFactory(f zfactor.SolverFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithLogger replaces the default zerolog logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = zfactor.GlobalFactory()
	}

	programName := "zfactor"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		err = apperrors.NewConfigError("unknown log level %q", cfg.LogLevel)
		fmt.Fprintln(errWriter, "Error:", err)
		return nil, err
	}

	app.Config = config.ApplyAdaptiveWorkers(cfg)
	app.RunID = uuid.NewString()
	app.Metrics = metrics.New()
	if app.Logger == nil {
		app.Logger = logging.NewLogger(errWriter, "zfactor").WithLevel(level)
	}
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Mode() == config.ModeCompletion {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.Theme, a.Config.NoColor)

	// Setup lifecycle (signals, then timeout). The dashboard stays open past
	// the timeout, so it only gets the signal context.
	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancelTimeout := context.WithTimeout(sigCtx, a.Config.Timeout)
	defer cancelTimeout()

	a.Logger.Info("run started",
		logging.String("run_id", a.RunID),
		logging.String("correlation", a.Config.Correlation),
		logging.Float64("tolerance", a.Config.Tolerance),
		logging.Int("workers", a.Config.Workers),
	)

	var code int
	switch a.Config.Mode() {
	case config.ModeInteractive:
		code = a.runInteractive(out)
	case config.ModeTUI:
		code = a.runTUI(sigCtx)
	case config.ModeServer:
		code = a.runServer(sigCtx)
	case config.ModeBatch:
		code = a.runBatch(ctx, out)
	case config.ModeGrid:
		code = a.runGrid(ctx, out)
	default:
		code = a.runSingle(ctx, out)
	}

	if err := a.writeMetrics(); err != nil {
		a.Logger.Error("writing metrics", err, logging.String("path", a.Config.MetricsOut))
		fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
		if code == apperrors.ExitSuccess {
			code = apperrors.ExitErrorGeneric
		}
	}

	a.Logger.Info("run finished", logging.String("run_id", a.RunID), logging.Int("exit_code", code))
	return code
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI charts the grid in the full-screen dashboard.
func (a *Application) runTUI(ctx context.Context) int {
	solvers, _ := orchestration.GetSolversToRun(a.Config.Correlation, a.Factory)
	opts := a.options()
	opts.Progress = nil
	// zerolog output would tear the alternate screen.
	opts.Logger = logging.Nop()
	return tui.Run(ctx, solvers, tui.Settings{
		Config:  a.Config,
		Spec:    a.gridSpec(),
		Options: opts,
		Version: Version,
		RunID:   a.RunID,
		Timeout: a.Config.Timeout,
	})
}

// runServer serves HTTP requests until interrupted. -timeout bounds each
// request rather than the whole session.
func (a *Application) runServer(ctx context.Context) int {
	srv := server.New(server.Config{
		Addr:               a.Config.ServeAddr,
		Tolerance:          a.Config.Tolerance,
		DefaultCorrelation: a.Config.Correlation,
		Workers:            a.Config.Workers,
		RequestTimeout:     a.Config.Timeout,
		Security:           server.DefaultSecurityConfig(),
	}, a.Factory, a.Metrics, a.Logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		a.Logger.Error("server failed", err, logging.String("addr", a.Config.ServeAddr))
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runInteractive starts the REPL on the standard streams.
func (a *Application) runInteractive(out io.Writer) int {
	repl := cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultCorrelation: a.Config.Correlation,
		Tolerance:          a.Config.Tolerance,
		Timeout:            a.Config.Timeout,
		Observer:           a.Metrics,
	})
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

func (a *Application) writeMetrics() error {
	if a.Config.MetricsOut == "" {
		return nil
	}
	return a.Metrics.WriteTextfile(a.Config.MetricsOut)
}

// IsHelpError checks if the error is a help flag error (-help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
