package tui

import (
	"time"

	"github.com/agbru/zfactor/internal/orchestration"
)

// ProgressMsg reports grid progress for one correlation.
type ProgressMsg struct {
	Index int
	Done  int
	Total int
}

// GridDoneMsg carries a finished (or interrupted) grid.
type GridDoneMsg struct {
	Index      int
	Grid       orchestration.GridResult
	Err        error
	Duration   time.Duration
	Generation uint64
}

// RunCompleteMsg is sent once every correlation has been charted.
type RunCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries Go runtime memory statistics.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	NumGoroutine int
}

// SysStatsMsg carries host CPU and memory usage in percent.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// ContextCancelledMsg is sent when the run context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
