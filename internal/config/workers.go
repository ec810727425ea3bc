package config

import "runtime"

// Worker resolution chain (highest priority first):
//   1. CLI flag (-workers)
//   2. Environment variable (ZFACTOR_WORKERS)
//   3. Hardware estimation (this file)

// ApplyAdaptiveWorkers fills in the worker count when it was left at zero.
func ApplyAdaptiveWorkers(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers()
	}
	return cfg
}

// EstimateOptimalWorkers picks a worker count for grid evaluation. A single
// solve is microseconds of arithmetic, so scheduling overhead dominates on
// small machines and the count is kept close to the core count.
func EstimateOptimalWorkers() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU <= 2:
		return 1
	case numCPU <= 8:
		return numCPU - 1
	default:
		return numCPU
	}
}
