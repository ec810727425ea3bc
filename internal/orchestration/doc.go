// Package orchestration coordinates concurrent Z-factor evaluations (correlation
// comparisons, grids and batch files) and aggregates their results. It decouples
// business logic from presentation via ProgressReporter and ResultPresenter
// interfaces.
package orchestration
