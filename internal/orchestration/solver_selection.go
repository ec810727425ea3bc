package orchestration

import (
	"github.com/agbru/zfactor/internal/config"
	"github.com/agbru/zfactor/internal/zfactor"
)

// GetSolversToRun determines which solvers should be executed for a
// correlation selection. "all" returns every registered solver in sorted key
// order for consistent, reproducible output. Unknown names return nil.
//
// Parameters:
//   - name: A registry key or config.AllCorrelations.
//   - factory: The solver factory to retrieve implementations from.
//
// Returns:
//   - []zfactor.Solver: The solvers to execute.
//   - []string: Their registry keys, index-aligned with the solvers.
func GetSolversToRun(name string, factory zfactor.SolverFactory) ([]zfactor.Solver, []string) {
	if name == config.AllCorrelations {
		keys := factory.List() // List() returns sorted keys
		solvers := make([]zfactor.Solver, 0, len(keys))
		found := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, err := factory.Get(k); err == nil {
				solvers = append(solvers, s)
				found = append(found, k)
			}
		}
		return solvers, found
	}
	if s, err := factory.Get(name); err == nil {
		return []zfactor.Solver{s}, []string{name}
	}
	return nil, nil
}
