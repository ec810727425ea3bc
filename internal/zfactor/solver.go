package zfactor

// Solver is a single correlation bound behind a common interface, so callers
// can select, list and run correlations by name.
type Solver interface {
	// Solve evaluates Z at one (Tpr, Ppr) point.
	Solve(tpr, ppr, tolerance float64) Result
	// Name returns a human-readable name for display.
	Name() string
	// Correlation returns the correlation this solver runs.
	Correlation() Correlation
}

// CorrelationSolver is the Solver for one of the built-in correlations.
type CorrelationSolver struct {
	correlation Correlation
}

// NewSolver returns a Solver bound to the given correlation.
func NewSolver(c Correlation) Solver {
	return &CorrelationSolver{correlation: c}
}

// Solve delegates to the package-level Solve.
func (s *CorrelationSolver) Solve(tpr, ppr, tolerance float64) Result {
	return Solve(tpr, ppr, s.correlation, tolerance)
}

// Name returns the correlation's display name.
func (s *CorrelationSolver) Name() string { return s.correlation.String() }

// Correlation returns the bound correlation.
func (s *CorrelationSolver) Correlation() Correlation { return s.correlation }
