package zfactor

import (
	"fmt"
	"sort"
	"sync"
)

// SolverFactory creates and caches solvers by short name.
type SolverFactory interface {
	// Get returns the solver registered under name.
	Get(name string) (Solver, error)
	// MustGet is like Get but panics on unknown names. Intended for tests
	// and package initialisation.
	MustGet(name string) Solver
	// List returns registered names in sorted order.
	List() []string
	// GetAll returns a copy of the registry.
	GetAll() map[string]Solver
	// Register adds or replaces a solver.
	Register(name string, s Solver)
}

// DefaultFactory is a thread-safe SolverFactory.
type DefaultFactory struct {
	mu      sync.RWMutex
	solvers map[string]Solver
}

// NewDefaultFactory returns a factory pre-populated with both correlations
// under their short keys ("hy", "dak").
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{solvers: make(map[string]Solver)}
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		f.solvers[c.Key()] = NewSolver(c)
	}
	return f
}

var (
	globalFactory     *DefaultFactory
	globalFactoryOnce sync.Once
)

// GlobalFactory returns a process-wide factory, created on first use.
func GlobalFactory() *DefaultFactory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewDefaultFactory()
	})
	return globalFactory
}

// Get implements SolverFactory.
func (f *DefaultFactory) Get(name string) (Solver, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if s, ok := f.solvers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown solver %q", name)
}

// MustGet implements SolverFactory.
func (f *DefaultFactory) MustGet(name string) Solver {
	s, err := f.Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// List implements SolverFactory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.solvers))
	for k := range f.solvers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAll implements SolverFactory.
func (f *DefaultFactory) GetAll() map[string]Solver {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]Solver, len(f.solvers))
	for k, v := range f.solvers {
		out[k] = v
	}
	return out
}

// Register implements SolverFactory.
func (f *DefaultFactory) Register(name string, s Solver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.solvers[name] = s
}
