package zfactor

import "math"

// Result describes one Z-factor evaluation.
type Result struct {
	// Correlation is the correlation that was requested.
	Correlation Correlation
	// Z is the floored compressibility factor, identical to what ZFactor returns.
	Z float64
	// Raw is the kernel output before the MinZ floor.
	Raw float64
	// Iterations is the number of Newton-Raphson residual evaluations.
	Iterations int
	// Residual is the last residual evaluated by the kernel.
	Residual float64
	// Converged reports whether the last residual is within tolerance.
	Converged bool
}

// ZFactor returns the gas compressibility factor for the given pseudo-reduced
// temperature and pressure using the selected correlation.
//
// The result is floored at MinZ. Unknown correlation tags yield 1.0. A NaN
// produced by the kernel, e.g. Hall-Yarborough at ppr = 0, is floored to MinZ
// like any other value below it.
func ZFactor(tpr, ppr float64, correlation Correlation, tolerance float64) float64 {
	return Solve(tpr, ppr, correlation, tolerance).Z
}

// Solve computes the same value as ZFactor and additionally reports how the
// iteration went. Hitting MaxIterations is not an error; Converged is false.
func Solve(tpr, ppr float64, correlation Correlation, tolerance float64) Result {
	res := Result{Correlation: correlation, Raw: fallbackZ}

	var it iteration
	switch correlation {
	case HallYarborough:
		it = hallYarborough(tpr, ppr, tolerance)
	case DranchukAboukassem:
		it = dranchukAbouKassem(tpr, ppr, tolerance)
	default:
		res.Z = floor(res.Raw)
		return res
	}

	res.Raw = it.value
	res.Iterations = it.passes
	res.Residual = it.residual
	res.Converged = math.Abs(it.residual) < tolerance
	res.Z = floor(res.Raw)
	return res
}

// floor clamps z to MinZ. NaN is replaced by MinZ; +Inf is kept.
func floor(z float64) float64 {
	if !(z >= MinZ) {
		return MinZ
	}
	return z
}
