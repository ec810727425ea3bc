// Package tui provides the full-screen dashboard used by -tui. It charts a
// grid evaluation while it runs: a run log, throughput and runtime metrics,
// and a Z vs Ppr plot per isotherm.
package tui

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/zfactor/internal/config"
	apperrors "github.com/agbru/zfactor/internal/errors"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/sysmon"
	"github.com/agbru/zfactor/internal/zfactor"
)

// Layout constants.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 8
	LogsPanelWidthPercent = 40
	MetricsPanelHeight    = 7
	tickInterval          = 500 * time.Millisecond
)

// ExecutionState holds the execution-related fields of a session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	solvers    []zfactor.Solver
	generation uint64
	done       bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and derives panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) logsWidth() int {
	return l.width * LogsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.logsWidth()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Settings are the run parameters the dashboard needs.
type Settings struct {
	Config  config.AppConfig
	Spec    orchestration.GridSpec
	Options orchestration.Options
	Version string
	RunID   string
	// Timeout bounds each charting run. The dashboard itself stays open.
	Timeout time.Duration
}

// Model is the root bubbletea model.
type Model struct {
	header  HeaderModel
	logs    LogsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	settings  Settings
	ref       *programRef
	paused    bool
	failed    bool
}

// NewModel creates a dashboard for the given solvers.
func NewModel(parentCtx context.Context, solvers []zfactor.Solver, s Settings) Model {
	names := make([]string, len(solvers))
	for i, sv := range solvers {
		names[i] = sv.Name()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	keys := DefaultKeyMap()

	logs := NewLogsModel(names)
	logs.AddExecutionConfig(s.Config, s.Spec.Points())

	return Model{
		header:  NewHeaderModel(s.Version, s.RunID),
		logs:    logs,
		metrics: NewMetricsModel(len(solvers), s.Spec.Points()),
		chart:   NewChartModel(names),
		footer:  NewFooterModel(keys),
		keymap:  keys,
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			solvers:  solvers,
			exitCode: apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		settings:  s,
		ref:       &programRef{},
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startGridsCmd(m.ref, m.ctx, m.solvers, m.settings, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		m.metrics.UpdateProgress(msg)
		if !m.paused {
			m.logs.AddProgress(msg)
		}
		return m, nil

	case GridDoneMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.logs.AddGrid(msg)
		m.metrics.AddGrid(msg.Index, msg.Grid)
		if msg.Err == nil {
			m.chart.SetGrid(msg.Index, msg.Grid)
		}
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.ctx), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case RunCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.footer.SetDone(true)
		if msg.ExitCode != apperrors.ExitSuccess {
			m.failed = true
			m.footer.SetError(true)
		}
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		return m.restart()

	case key.Matches(msg, m.keymap.Up):
		m.chart.MoveIsotherm(1)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.chart.MoveIsotherm(-1)
		return m, nil

	case key.Matches(msg, m.keymap.Next):
		m.chart.NextCorrelation(1)
		return m, nil

	case key.Matches(msg, m.keymap.Prev):
		m.chart.NextCorrelation(-1)
		return m, nil

	case key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		m.logs.Update(msg)
		return m, nil
	}
	return m, nil
}

// restart cancels the current run and charts the grid again.
func (m Model) restart() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	m.ctx, m.cancel = context.WithCancel(m.parentCtx)

	m.header.Reset()
	m.logs.Reset()
	m.logs.AddExecutionConfig(m.settings.Config, m.settings.Spec.Points())
	m.chart.Reset()
	m.metrics = NewMetricsModel(len(m.solvers), m.settings.Spec.Points())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.footer.SetDone(false)
	m.footer.SetError(false)
	m.footer.SetPaused(false)
	m.done = false
	m.paused = false
	m.failed = false
	m.exitCode = apperrors.ExitSuccess

	return m, tea.Batch(
		tickCmd(),
		startGridsCmd(m.ref, m.ctx, m.solvers, m.settings, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	right := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.logs.View(), right)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.logs.SetSize(m.logsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run starts the dashboard and blocks until the user quits or ctx ends. It
// returns the exit code of the last completed run.
func Run(ctx context.Context, solvers []zfactor.Solver, s Settings) int {
	initStyles()

	model := NewModel(ctx, solvers, s)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperrors.HandleCalculationError(ctxErr, 0, io.Discard, nil)
		}
		return apperrors.ExitErrorGeneric
	}
	if fm, ok := final.(Model); ok {
		fm.cancel()
		return fm.exitCode
	}
	return apperrors.ExitSuccess
}

// startGridsCmd charts every solver in turn and reports each grid as it
// finishes.
func startGridsCmd(ref *programRef, ctx context.Context, solvers []zfactor.Solver, s Settings, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		code := apperrors.ExitSuccess
		for i, solver := range solvers {
			opts := s.Options
			opts.Progress = &TUIProgressReporter{ref: ref, index: i}
			opts.ProgressOut = nil

			start := time.Now()
			grid, err := orchestration.ExecuteGrid(ctx, solver, s.Spec, opts)
			ref.Send(GridDoneMsg{Index: i, Grid: grid, Err: err, Duration: time.Since(start), Generation: gen})
			if err != nil {
				return RunCompleteMsg{ExitCode: apperrors.HandleCalculationError(err, 0, io.Discard, nil), Generation: gen}
			}
			if s.Config.Strict && code == apperrors.ExitSuccess && grid.NonConverged() > 0 {
				code = apperrors.ExitErrorNotConverged
			}
		}
		return RunCompleteMsg{ExitCode: code, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample(ctx)
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
