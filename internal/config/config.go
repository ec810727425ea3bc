// Package config parses command-line flags and environment variables into the
// application configuration.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/ui"
)

// EnvPrefix is prepended to every environment variable consulted by the
// configuration layer.
const EnvPrefix = "ZFACTOR_"

// Default values for flags.
const (
	DefaultCorrelation = "dak"
	DefaultTolerance   = 1e-6
	DefaultTimeout     = 30 * time.Second
	DefaultFormat      = FormatText
	DefaultLogLevel    = "warn"
	DefaultTheme       = "dark"
)

// Output formats accepted by -format.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// AllCorrelations selects every registered correlation.
const AllCorrelations = "all"

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Tpr and Ppr are the pseudo-reduced temperature and pressure for a
	// single-point evaluation.
	Tpr float64
	Ppr float64
	// Correlation is a registry key ("hy", "dak") or "all".
	Correlation string
	// Tolerance is the Newton-Raphson residual threshold.
	Tolerance float64

	// Grid enables evaluation over a Tpr x Ppr grid.
	Grid bool
	// TUI charts the grid in a full-screen dashboard.
	TUI     bool
	TprMin  float64
	TprMax  float64
	TprStep float64
	PprMin  float64
	PprMax  float64
	PprStep float64

	// BatchFile is a TOML or YAML file listing cases to evaluate.
	BatchFile string

	// Format is the output format for results: text, csv, json or yaml.
	Format string
	// OutputFile, when set, receives the results instead of being printed only.
	OutputFile string
	// MetricsOut, when set, receives Prometheus metrics in text exposition format.
	MetricsOut string

	// Workers bounds grid and batch concurrency. Zero selects a hardware-based default.
	Workers int
	// Timeout is the maximum duration of a run.
	Timeout time.Duration

	Quiet       bool
	Verbose     bool
	Details     bool
	NoColor     bool
	Interactive bool
	// Theme names the color theme: dark, light or none.
	Theme string
	// Strict turns a non-converged solve into a failure exit code.
	Strict bool
	// LogLevel is a zerolog level name.
	LogLevel string
	// Completion names a shell whose completion script should be printed.
	Completion string
	// ServeAddr, when set, starts the HTTP service on this address.
	ServeAddr string
}

// Mode describes what the application should do with the configuration.
type Mode int

const (
	ModeSingle Mode = iota
	ModeGrid
	ModeBatch
	ModeInteractive
	ModeCompletion
	ModeTUI
	ModeServer
)

// Mode returns the run mode implied by the configuration.
func (c AppConfig) Mode() Mode {
	switch {
	case c.Completion != "":
		return ModeCompletion
	case c.ServeAddr != "":
		return ModeServer
	case c.Interactive:
		return ModeInteractive
	case c.TUI:
		return ModeTUI
	case c.BatchFile != "":
		return ModeBatch
	case c.Grid:
		return ModeGrid
	default:
		return ModeSingle
	}
}

// ParseConfig parses the command-line arguments, applies environment
// overrides for flags that were not set explicitly, and validates the result.
//
// Parameters:
//   - programName: Name used in usage output.
//   - args: Command-line arguments without the program name.
//   - errorWriter: Destination for flag parsing errors and usage.
//   - availableCorrelations: Registry keys accepted by -correlation.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp when -h was given, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableCorrelations []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.Float64Var(&config.Tpr, "tpr", 0, "Pseudo-reduced temperature.")
	fs.Float64Var(&config.Ppr, "ppr", 0, "Pseudo-reduced pressure.")
	fs.StringVar(&config.Correlation, "correlation", DefaultCorrelation,
		fmt.Sprintf("Correlation to use (%s, %s).", strings.Join(availableCorrelations, ", "), AllCorrelations))
	fs.Float64Var(&config.Tolerance, "tolerance", DefaultTolerance, "Newton-Raphson residual tolerance.")

	fs.BoolVar(&config.Grid, "grid", false, "Evaluate Z over a Tpr x Ppr grid.")
	fs.BoolVar(&config.TUI, "tui", false, "Chart the grid in an interactive dashboard.")
	fs.Float64Var(&config.TprMin, "tpr-min", 1.05, "Grid: minimum Tpr.")
	fs.Float64Var(&config.TprMax, "tpr-max", 3.0, "Grid: maximum Tpr.")
	fs.Float64Var(&config.TprStep, "tpr-step", 0.05, "Grid: Tpr increment.")
	fs.Float64Var(&config.PprMin, "ppr-min", 0.2, "Grid: minimum Ppr.")
	fs.Float64Var(&config.PprMax, "ppr-max", 15.0, "Grid: maximum Ppr.")
	fs.Float64Var(&config.PprStep, "ppr-step", 0.2, "Grid: Ppr increment.")

	fs.StringVar(&config.BatchFile, "batch", "", "Evaluate the cases listed in a TOML or YAML file.")
	fs.StringVar(&config.Format, "format", DefaultFormat, "Output format (text, csv, json, yaml).")
	fs.StringVar(&config.OutputFile, "output", "", "Write results to a file.")
	fs.StringVar(&config.OutputFile, "o", "", "Write results to a file (shorthand).")
	fs.StringVar(&config.MetricsOut, "metrics-out", "", "Write Prometheus metrics to a file after the run.")

	fs.IntVar(&config.Workers, "workers", 0, "Concurrent solves for grid and batch runs (0 = auto).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of the run.")

	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the numeric results.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print full-precision values.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose mode (shorthand).")
	fs.BoolVar(&config.Details, "details", false, "Show iteration diagnostics.")
	fs.BoolVar(&config.Details, "d", false, "Show iteration diagnostics (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color theme ("+strings.Join(ui.ThemeNames(), ", ")+").")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start an interactive session.")
	fs.BoolVar(&config.Interactive, "i", false, "Interactive session (shorthand).")
	fs.BoolVar(&config.Strict, "strict", false, "Fail when a solve exhausts its iteration budget.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&config.ServeAddr, "serve", "", "Serve Z-factor requests over HTTP on this address (e.g. :8080).")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)
	config.Correlation = strings.ToLower(config.Correlation)
	config.Format = strings.ToLower(config.Format)
	config.Theme = strings.ToLower(config.Theme)

	if err := config.Validate(availableCorrelations); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the configuration for consistency. It only guards the
// command-line surface; the solver itself accepts any input.
func (c AppConfig) Validate(availableCorrelations []string) error {
	if c.Correlation != AllCorrelations && !slices.Contains(availableCorrelations, c.Correlation) {
		return apperrors.NewConfigError("unknown correlation %q (available: %s, %s)",
			c.Correlation, strings.Join(availableCorrelations, ", "), AllCorrelations)
	}
	if !(c.Tolerance > 0) {
		return apperrors.NewConfigError("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("workers must be zero or positive, got %d", c.Workers)
	}
	switch c.Format {
	case FormatText, FormatCSV, FormatJSON, FormatYAML:
	default:
		return apperrors.NewConfigError("unknown output format %q", c.Format)
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return apperrors.NewConfigError("unknown theme %q (available: %s)",
			c.Theme, strings.Join(ui.ThemeNames(), ", "))
	}

	switch c.Mode() {
	case ModeGrid, ModeTUI:
		if !(c.TprStep > 0) || !(c.PprStep > 0) {
			return apperrors.NewConfigError("grid steps must be positive")
		}
		if c.TprMin > c.TprMax || c.PprMin > c.PprMax {
			return apperrors.NewConfigError("grid minimum exceeds maximum")
		}
		if !(c.TprMin > 0) || c.PprMin < 0 {
			return apperrors.NewConfigError("grid requires Tpr > 0 and Ppr >= 0")
		}
	case ModeSingle:
		if !(c.Tpr > 0) {
			return apperrors.NewConfigError("-tpr must be positive (got %g)", c.Tpr)
		}
		if c.Ppr < 0 {
			return apperrors.NewConfigError("-ppr must not be negative (got %g)", c.Ppr)
		}
	}
	return nil
}
