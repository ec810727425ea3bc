package zfactor

// ─────────────────────────────────────────────────────────────────────────────
// Solver Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MinZ is the floor applied to every computed Z-factor. It guards against
	// non-physical or badly under-converged results.
	MinZ = 0.01

	// MaxIterations is the hard cap on Newton-Raphson passes for both
	// correlations. It is the only safeguard against non-convergence.
	MaxIterations = 1000

	// DefaultTolerance is the residual threshold used by the reference data.
	DefaultTolerance = 1e-6

	// fallbackZ is returned by the dispatcher for correlation tags it does
	// not know.
	fallbackZ = 1.0
)

// ─────────────────────────────────────────────────────────────────────────────
// Hall-Yarborough
// ─────────────────────────────────────────────────────────────────────────────

const (
	// hyInitialGuess is the first reduced density evaluated by the loop.
	hyInitialGuess = 1e-3
	// hyInitialY is the value y holds before the first pass assigns the guess.
	hyInitialY = 1.0
)

// ─────────────────────────────────────────────────────────────────────────────
// Dranchuk-Abou-Kassem
// ─────────────────────────────────────────────────────────────────────────────

const (
	// dakInitialGuess is the first Z evaluated by the loop.
	dakInitialGuess = 0.5
	// dakDensityFactor is the critical compressibility used to build the
	// reduced gas density: Rr = 0.27 * Ppr / (Z * Tpr).
	dakDensityFactor = 0.27
)

// dakCoefficients are the eleven regression constants A1..A11 of the
// Dranchuk-Abou-Kassem equation of state, stored zero-based.
var dakCoefficients = [11]float64{
	0.3265, -1.0700, -0.5339, 0.01569, -0.05165, 0.5475, -0.7361, 0.1844, 0.1056, 0.6134,
	0.7210,
}
