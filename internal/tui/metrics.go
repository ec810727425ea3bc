package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
)

// MetricsModel shows run throughput, solver statistics and Go runtime
// memory figures.
type MetricsModel struct {
	bar progress.Model

	done  []int
	total []int

	// rate is a smoothed evaluations-per-second figure.
	rate       float64
	lastDone   int
	lastUpdate time.Time

	iterations   int
	evaluated    int
	nonConverged int

	alloc        uint64
	heapSys      uint64
	numGC        uint32
	numGoroutine int

	width  int
	height int
}

// NewMetricsModel creates a metrics panel for n correlations of points
// each.
func NewMetricsModel(n, points int) MetricsModel {
	m := MetricsModel{
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		done:       make([]int, n),
		total:      make([]int, n),
		lastUpdate: time.Now(),
	}
	for i := range m.total {
		m.total[i] = points
	}
	return m
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(w-14, 10)
}

// Fraction returns the overall completed fraction.
func (m MetricsModel) Fraction() float64 {
	var done, total int
	for i := range m.total {
		done += m.done[i]
		total += m.total[i]
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func (m MetricsModel) doneCount() int {
	n := 0
	for _, d := range m.done {
		n += d
	}
	return n
}

// UpdateProgress records a progress update and refreshes the rate.
func (m *MetricsModel) UpdateProgress(msg ProgressMsg) {
	if msg.Index < 0 || msg.Index >= len(m.done) {
		return
	}
	if msg.Done > m.done[msg.Index] {
		m.done[msg.Index] = msg.Done
	}
	if msg.Total > 0 {
		m.total[msg.Index] = msg.Total
	}

	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt > 0.05 {
		done := m.doneCount()
		if dp := done - m.lastDone; dp > 0 {
			instant := float64(dp) / dt
			if m.rate > 0 {
				m.rate = 0.7*m.rate + 0.3*instant
			} else {
				m.rate = instant
			}
		}
		m.lastDone = done
		m.lastUpdate = now
	}
}

// AddGrid accumulates solver statistics from a finished grid and settles its
// progress on the number of evaluated points.
func (m *MetricsModel) AddGrid(index int, g orchestration.GridResult) {
	evaluated := 0
	for _, r := range g.Flatten() {
		if r.Err != nil {
			continue
		}
		evaluated++
		m.iterations += r.Result.Iterations
		if !r.Result.Converged {
			m.nonConverged++
		}
	}
	m.evaluated += evaluated
	if index >= 0 && index < len(m.done) {
		m.done[index] = evaluated
	}
}

// UpdateMemStats stores a runtime memory sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// MeanIterations returns the mean iteration count of evaluated points.
func (m MetricsModel) MeanIterations() float64 {
	if m.evaluated == 0 {
		return 0
	}
	return float64(m.iterations) / float64(m.evaluated)
}

// View renders the panel.
func (m MetricsModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Run"))
	b.WriteString("\n ")
	b.WriteString(m.bar.ViewAs(m.Fraction()))
	b.WriteString(metricValueStyle.Render(fmt.Sprintf(" %5.1f%%", m.Fraction()*100)))

	colWidth := max((m.width-4)/2, 0)
	left := []string{
		formatMetricCol("Points:", fmt.Sprintf("%d", m.doneCount()), colWidth),
		formatMetricCol("Rate:", fmt.Sprintf("%.0f/s", m.rate), colWidth),
		formatMetricCol("Heap:", formatBytes(m.alloc)+" / "+formatBytes(m.heapSys), colWidth),
	}
	right := []string{
		formatMetricCol("Mean iter:", format.FormatZ(m.MeanIterations(), 1), colWidth),
		formatMetricCol("Budget hit:", fmt.Sprintf("%d", m.nonConverged), colWidth),
		formatMetricCol("GC/gor.:", fmt.Sprintf("%d / %d", m.numGC, m.numGoroutine), colWidth),
	}
	for i := range left {
		b.WriteString("\n")
		b.WriteString(left[i])
		b.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(b.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-11s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
