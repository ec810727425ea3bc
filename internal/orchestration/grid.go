package orchestration

import (
	"math"

	apperrors "github.com/agbru/zfactor/internal/errors"
)

// maxGridPoints bounds a grid so a mistyped step cannot exhaust memory.
const maxGridPoints = 1_000_000

// GridSpec describes a rectangular chart of state points. Both axes are
// inclusive of their minimum and, when the range is an exact multiple of the
// step, of their maximum.
type GridSpec struct {
	TprMin, TprMax, TprStep float64
	PprMin, PprMax, PprStep float64
}

// GridResult holds a grid in row-major order: one row per Tpr value, one
// column per Ppr value.
type GridResult struct {
	Spec    GridSpec
	Name    string
	Key     string
	TprAxis []float64
	PprAxis []float64
	Rows    [][]CalculationResult
}

// Points returns the number of points in the grid.
func (g GridResult) Points() int {
	return len(g.TprAxis) * len(g.PprAxis)
}

// NonConverged returns the number of points whose solve did not converge.
func (g GridResult) NonConverged() int {
	n := 0
	for _, row := range g.Rows {
		for _, p := range row {
			if p.Err == nil && !p.Result.Converged {
				n++
			}
		}
	}
	return n
}

// Validate reports malformed axes as a ValidationError.
func (s GridSpec) Validate() error {
	if err := validateAxis("tpr", s.TprMin, s.TprMax, s.TprStep); err != nil {
		return err
	}
	if err := validateAxis("ppr", s.PprMin, s.PprMax, s.PprStep); err != nil {
		return err
	}
	if n := axisCount(s.TprMin, s.TprMax, s.TprStep) * axisCount(s.PprMin, s.PprMax, s.PprStep); !(n <= maxGridPoints) {
		return apperrors.ValidationError{Field: "grid", Message: "too many points; increase the steps"}
	}
	return nil
}

func validateAxis(name string, lo, hi, step float64) error {
	for _, v := range []float64{lo, hi, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.ValidationError{Field: name, Message: "bounds and step must be finite"}
		}
	}
	if step <= 0 {
		return apperrors.ValidationError{Field: name + "-step", Message: "must be positive"}
	}
	if hi < lo {
		return apperrors.ValidationError{Field: name + "-max", Message: "must not be below the minimum"}
	}
	return nil
}

// axisCount counts points on an axis in float64, so that huge ranges or tiny
// steps give a large or infinite count instead of overflowing an int. The
// small slack absorbs rounding in (hi-lo)/step so that 0.1 steps reach their
// nominal endpoint.
func axisCount(lo, hi, step float64) float64 {
	return math.Floor((hi-lo)/step+1e-9) + 1
}

// axisLen is axisCount as an int, saturated just above maxGridPoints.
func axisLen(lo, hi, step float64) int {
	c := axisCount(lo, hi, step)
	if !(c <= maxGridPoints) {
		return maxGridPoints + 1
	}
	return int(c)
}

// axis builds the values of one axis as lo + i*step. Counting steps instead
// of accumulating keeps the last value free of drift.
func axis(lo, hi, step float64) []float64 {
	n := axisLen(lo, hi, step)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}

// TprAxis returns the Tpr values of the grid.
func (s GridSpec) TprAxis() []float64 { return axis(s.TprMin, s.TprMax, s.TprStep) }

// PprAxis returns the Ppr values of the grid.
func (s GridSpec) PprAxis() []float64 { return axis(s.PprMin, s.PprMax, s.PprStep) }

// Points returns the total number of points in the grid, saturated just
// above the limit Validate enforces.
func (s GridSpec) Points() int {
	n := axisCount(s.TprMin, s.TprMax, s.TprStep) * axisCount(s.PprMin, s.PprMax, s.PprStep)
	if !(n <= maxGridPoints) {
		return maxGridPoints + 1
	}
	return int(n)
}
