// Package zfactor computes the gas compressibility factor (Z-factor) of a
// natural-gas mixture from its pseudo-reduced temperature and pressure.
//
// Two published correlations are available, each solved by Newton-Raphson
// iteration:
//
//   - Hall-Yarborough iterates a reduced-density variable and derives Z from it.
//   - Dranchuk-Abou-Kassem iterates Z directly through a reduced gas density term.
//
// Every call is pure: all iteration state is local to the call, so the
// functions are safe for concurrent use without coordination. Non-convergence
// is not reported by ZFactor; the value reached after MaxIterations passes is
// returned as is. Solve returns the same value together with diagnostics.
package zfactor
