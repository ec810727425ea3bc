package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/zfactor/internal/config"
	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
)

// maxLogEntries bounds the log history.
const maxLogEntries = 500

// LogsModel is the scrolling run log.
type LogsModel struct {
	viewport viewport.Model
	entries  []string
	names    []string
	// lastPct suppresses repeated progress lines per correlation.
	lastPct []int
	width   int
	height  int
}

// NewLogsModel creates a log panel for the given correlations.
func NewLogsModel(names []string) LogsModel {
	return LogsModel{
		viewport: viewport.New(0, 0),
		names:    names,
		lastPct:  make([]int, len(names)),
	}
}

// SetSize updates the panel dimensions, borders included.
func (l *LogsModel) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.viewport.Width = max(w-2, 0)
	l.viewport.Height = max(h-3, 0)
	l.refresh()
}

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.entries = nil
	for i := range l.lastPct {
		l.lastPct[i] = 0
	}
	l.refresh()
}

func (l *LogsModel) add(line string) {
	stamp := logTimeStyle.Render(time.Now().Format("15:04:05"))
	l.entries = append(l.entries, stamp+" "+line)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[len(l.entries)-maxLogEntries:]
	}
	l.refresh()
}

func (l *LogsModel) refresh() {
	atBottom := l.viewport.AtBottom()
	l.viewport.SetContent(strings.Join(l.entries, "\n"))
	if atBottom {
		l.viewport.GotoBottom()
	}
}

func (l *LogsModel) name(i int) string {
	if i >= 0 && i < len(l.names) {
		return logCorrStyle.Render(l.names[i])
	}
	return logCorrStyle.Render("?")
}

// AddExecutionConfig logs the run parameters.
func (l *LogsModel) AddExecutionConfig(cfg config.AppConfig, points int) {
	l.add(fmt.Sprintf("Grid Tpr %g..%g step %g, Ppr %g..%g step %g (%d points)",
		cfg.TprMin, cfg.TprMax, cfg.TprStep, cfg.PprMin, cfg.PprMax, cfg.PprStep, points))
	l.add(fmt.Sprintf("Tolerance %g, %d worker(s), %d correlation(s)", cfg.Tolerance, cfg.Workers, len(l.names)))
}

// AddProgress logs progress in 25% steps.
func (l *LogsModel) AddProgress(msg ProgressMsg) {
	if msg.Total <= 0 || msg.Index < 0 || msg.Index >= len(l.lastPct) {
		return
	}
	pct := msg.Done * 100 / msg.Total / 25 * 25
	if pct <= l.lastPct[msg.Index] || pct >= 100 {
		return
	}
	l.lastPct[msg.Index] = pct
	l.add(fmt.Sprintf("%s %d%% (%d/%d)", l.name(msg.Index), pct, msg.Done, msg.Total))
}

// AddGrid logs a finished grid.
func (l *LogsModel) AddGrid(msg GridDoneMsg) {
	if msg.Err != nil {
		l.add(fmt.Sprintf("%s %s", l.name(msg.Index), logErrorStyle.Render("interrupted: "+msg.Err.Error())))
		return
	}
	l.add(fmt.Sprintf("%s %s %d points in %s",
		l.name(msg.Index), logSuccessStyle.Render("✓"), msg.Grid.Points(), format.FormatExecutionDuration(msg.Duration)))
	if n := msg.Grid.NonConverged(); n > 0 {
		l.add(fmt.Sprintf("%s %s", l.name(msg.Index), logWarnStyle.Render(fmt.Sprintf("%d point(s) exhausted the iteration budget", n))))
	}
	if lo, hi, ok := zRange(msg.Grid); ok {
		l.add(fmt.Sprintf("%s Z range %s .. %s", l.name(msg.Index), format.FormatZ(lo, 4), format.FormatZ(hi, 4)))
	}
}

// AddError logs a run-level error.
func (l *LogsModel) AddError(err error) {
	l.add(logErrorStyle.Render("Error: " + err.Error()))
}

// Update forwards scroll keys to the viewport.
func (l *LogsModel) Update(msg tea.Msg) {
	l.viewport, _ = l.viewport.Update(msg)
}

// View renders the log panel.
func (l LogsModel) View() string {
	body := panelTitleStyle.Render("Log") + "\n" + l.viewport.View()
	return panelStyle.Width(max(l.width-2, 0)).Height(max(l.height-2, 0)).Render(body)
}

// zRange returns the extreme Z values over the evaluated, finite cells.
func zRange(g orchestration.GridResult) (lo, hi float64, ok bool) {
	for _, r := range g.Flatten() {
		z := r.Result.Z
		if r.Err != nil || math.IsNaN(z) || math.IsInf(z, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = z, z, true
			continue
		}
		lo = min(lo, z)
		hi = max(hi, z)
	}
	return lo, hi, ok
}
