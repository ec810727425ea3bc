package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/zfactor/internal/config"
	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/ui"
	"github.com/agbru/zfactor/internal/zfactor"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultCorrelation is the registry key used by calc.
	DefaultCorrelation string
	// Tolerance is the initial solve tolerance.
	Tolerance float64
	// Timeout bounds each comparison.
	Timeout time.Duration
	// Observer is notified of every solve. May be nil.
	Observer orchestration.Observer
}

// REPL represents an interactive Z-factor session.
type REPL struct {
	config      REPLConfig
	factory     zfactor.SolverFactory
	currentCorr string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - factory: Registry of available solvers.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance.
func NewREPL(factory zfactor.SolverFactory, cfg REPLConfig) *REPL {
	current := cfg.DefaultCorrelation
	if _, err := factory.Get(current); err != nil {
		// "all" or unknown: fall back to the first registered key.
		if keys := factory.List(); len(keys) > 0 {
			current = keys[0]
		}
	}
	if !(cfg.Tolerance > 0) {
		cfg.Tolerance = zfactor.DefaultTolerance
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	return &REPL{
		config:      cfg,
		factory:     factory,
		currentCorr: current,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start begins the interactive REPL session.
// It continuously reads user input and processes commands until
// the user exits or EOF is reached.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"z> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" && !r.processCommand(input) {
			return // Exit command received
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			}
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sGas Z-factor Calculator - Interactive Mode%s            %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scalc <tpr> <ppr>%s     - Evaluate Z with the current correlation\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scorr <name>%s          - Change correlation (%s)\n", ui.ColorYellow(), ui.ColorReset(), strings.Join(r.factory.List(), ", "))
	fmt.Fprintf(r.out, "  %scompare <tpr> <ppr>%s  - Evaluate Z with every correlation\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %stol <value>%s          - Change the solve tolerance\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slist%s                 - List available correlations\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s               - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s                 - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s          - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "calc", "c":
		r.cmdCalc(args)
	case "corr", "correlation":
		r.cmdCorr(args)
	case "compare", "cmp":
		r.cmdCompare(args)
	case "tol", "tolerance":
		r.cmdTol(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		// Two bare numbers are a quick calc.
		if _, _, ok := parseStatePoint(parts); ok {
			r.cmdCalc(parts)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}

	return true
}

// parseStatePoint reads "<tpr> <ppr>". Both must be finite.
func parseStatePoint(args []string) (float64, float64, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	tpr, err1 := strconv.ParseFloat(args[0], 64)
	ppr, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil || math.IsNaN(tpr) || math.IsNaN(ppr) || math.IsInf(tpr, 0) || math.IsInf(ppr, 0) {
		return 0, 0, false
	}
	return tpr, ppr, true
}

func (r *REPL) cmdCalc(args []string) {
	tpr, ppr, ok := parseStatePoint(args)
	if !ok {
		fmt.Fprintf(r.out, "%sUsage: calc <tpr> <ppr>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	solver, err := r.factory.Get(r.currentCorr)
	if err != nil {
		fmt.Fprintf(r.out, "%sCorrelation not found: %s%s\n", ui.ColorRed(), r.currentCorr, ui.ColorReset())
		return
	}
	results := r.run([]zfactor.Solver{solver}, tpr, ppr)
	DisplayResult(results[0], false, true, r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdCorr(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: corr <name>%s\n", ui.ColorRed(), ui.ColorReset())
		fmt.Fprintf(r.out, "Available correlations: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}

	name := strings.ToLower(args[0])
	if c, err := zfactor.ParseCorrelation(name); err == nil {
		name = c.Key()
	}
	solver, err := r.factory.Get(name)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown correlation: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		fmt.Fprintf(r.out, "Available correlations: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}

	r.currentCorr = name
	fmt.Fprintf(r.out, "Correlation changed to: %s%s%s\n", ui.ColorGreen(), solver.Name(), ui.ColorReset())
}

func (r *REPL) cmdCompare(args []string) {
	tpr, ppr, ok := parseStatePoint(args)
	if !ok {
		fmt.Fprintf(r.out, "%sUsage: compare <tpr> <ppr>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	solvers, _ := orchestration.GetSolversToRun(config.AllCorrelations, r.factory)
	results := r.run(solvers, tpr, ppr)

	fmt.Fprintf(r.out, "\n%sComparison at Tpr=%s, Ppr=%s:%s\n", ui.ColorBold(), format.FormatFloat(tpr), format.FormatFloat(ppr), ui.ColorReset())
	fmt.Fprintln(r.out, RenderComparisonTable(results, false, false))
	if spread := orchestration.Spread(results); spread != 0 {
		fmt.Fprintf(r.out, "Correlation spread: %s%s%s\n", ui.ColorYellow(), formatZ(spread, false), ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) run(solvers []zfactor.Solver, tpr, ppr float64) []orchestration.CalculationResult {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()
	return orchestration.ExecuteComparison(ctx, solvers, tpr, ppr, orchestration.Options{
		Tolerance: r.config.Tolerance,
		Observer:  r.config.Observer,
	})
}

func (r *REPL) cmdTol(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: tol <value>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	tol, err := strconv.ParseFloat(args[0], 64)
	if err != nil || !(tol > 0) || math.IsInf(tol, 0) {
		fmt.Fprintf(r.out, "%sTolerance must be a positive number: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	r.config.Tolerance = tol
	fmt.Fprintf(r.out, "Tolerance set to: %s%g%s\n", ui.ColorGreen(), tol, ui.ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable correlations:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range r.factory.List() {
		marker := "  "
		if name == r.currentCorr {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-6s%s - %s\n", marker, ui.ColorYellow(), name, ui.ColorReset(), r.factory.MustGet(name).Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Correlation:    %s%s%s\n", ui.ColorCyan(), r.currentCorr, ui.ColorReset())
	fmt.Fprintf(r.out, "  Tolerance:      %s%g%s\n", ui.ColorCyan(), r.config.Tolerance, ui.ColorReset())
	fmt.Fprintf(r.out, "  Max iterations: %s%d%s\n", ui.ColorCyan(), zfactor.MaxIterations, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:        %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintln(r.out)
}
