package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
)

// sysHistory is the number of CPU and memory samples kept for sparklines.
const sysHistory = 60

// yLabelWidth is the width of the Z axis labels.
const yLabelWidth = 7

// ChartModel plots Z against Ppr along one isotherm of a finished grid, with
// host CPU and memory sparklines underneath.
type ChartModel struct {
	names    []string
	grids    []*orchestration.GridResult
	selected int
	isotherm int

	cpuHistory *RingBuffer
	memHistory *RingBuffer

	width  int
	height int
}

// NewChartModel creates a chart for the given correlations.
func NewChartModel(names []string) ChartModel {
	return ChartModel{
		names:      names,
		grids:      make([]*orchestration.GridResult, len(names)),
		cpuHistory: NewRingBuffer(sysHistory),
		memHistory: NewRingBuffer(sysHistory),
	}
}

// SetSize updates dimensions.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// Reset drops every grid and sample.
func (c *ChartModel) Reset() {
	for i := range c.grids {
		c.grids[i] = nil
	}
	c.cpuHistory.Reset()
	c.memHistory.Reset()
}

// SetGrid stores a finished grid. The first grid to arrive becomes the
// selection when nothing is shown yet.
func (c *ChartModel) SetGrid(index int, g orchestration.GridResult) {
	if index < 0 || index >= len(c.grids) {
		return
	}
	c.grids[index] = &g
	if c.current() == nil {
		c.selected = index
	}
	c.clampIsotherm()
}

// UpdateSysStats records a host usage sample.
func (c *ChartModel) UpdateSysStats(cpu, mem float64) {
	c.cpuHistory.Push(cpu)
	c.memHistory.Push(mem)
}

// NextCorrelation selects the next correlation (delta +1) or the previous
// one (delta -1).
func (c *ChartModel) NextCorrelation(delta int) {
	if n := len(c.grids); n > 0 {
		c.selected = ((c.selected+delta)%n + n) % n
		c.clampIsotherm()
	}
}

// MoveIsotherm moves the selected isotherm by delta rows.
func (c *ChartModel) MoveIsotherm(delta int) {
	c.isotherm += delta
	c.clampIsotherm()
}

func (c *ChartModel) clampIsotherm() {
	g := c.current()
	if g == nil {
		return
	}
	c.isotherm = min(max(c.isotherm, 0), max(len(g.TprAxis)-1, 0))
}

func (c ChartModel) current() *orchestration.GridResult {
	if c.selected < 0 || c.selected >= len(c.grids) {
		return nil
	}
	return c.grids[c.selected]
}

// Isotherm returns the selected curve: its Tpr and the Z value at each Ppr.
func (c ChartModel) Isotherm() (tpr float64, z []float64, ok bool) {
	g := c.current()
	if g == nil || c.isotherm >= len(g.Rows) {
		return 0, nil, false
	}
	row := g.Rows[c.isotherm]
	z = make([]float64, len(row))
	for i, r := range row {
		z[i] = r.Result.Z
		if r.Err != nil {
			z[i] = math.NaN()
		}
	}
	return g.TprAxis[c.isotherm], z, true
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	innerW := max(c.width-4, 0)
	// Title, x axis, two sparklines and borders.
	plotRows := max(c.height-2-5, 1)

	tpr, z, ok := c.Isotherm()
	if !ok {
		b.WriteString(panelTitleStyle.Render("Z vs Ppr"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(" waiting for the first grid..."))
		for range plotRows {
			b.WriteString("\n")
		}
	} else {
		g := c.current()
		b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Z vs Ppr | %s | Tpr = %s", g.Name, format.FormatFloat(tpr))))
		lo, hi, _ := zRange(*g)
		plotW := max(innerW-yLabelWidth-1, 1)
		lines := RenderBrailleCurve(z, lo, hi, plotW, plotRows)
		for i, line := range lines {
			label := ""
			switch i {
			case 0:
				label = format.FormatZ(hi, 3)
			case len(lines) - 1:
				label = format.FormatZ(lo, 3)
			}
			b.WriteString("\n")
			b.WriteString(axisStyle.Render(fmt.Sprintf("%*s ", yLabelWidth, label)))
			b.WriteString(curveStyle.Render(line))
		}
		b.WriteString("\n")
		b.WriteString(axisStyle.Render(axisLine(g.PprAxis, yLabelWidth+1, plotW)))
	}

	b.WriteString("\n")
	b.WriteString(sysLine("CPU", c.cpuHistory, cpuSparklineStyle, innerW))
	b.WriteString("\n")
	b.WriteString(sysLine("MEM", c.memHistory, memSparklineStyle, innerW))

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}

// axisLine renders the Ppr extremes under the plot.
func axisLine(axis []float64, indent, width int) string {
	if len(axis) == 0 {
		return ""
	}
	left := "Ppr " + format.FormatFloat(roundLabel(axis[0]))
	right := format.FormatFloat(roundLabel(axis[len(axis)-1]))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return strings.Repeat(" ", indent) + left + strings.Repeat(" ", gap) + right
}

// sysLine renders one labelled host usage sparkline.
func sysLine(label string, h *RingBuffer, style lipgloss.Style, width int) string {
	values := h.Slice()
	room := max(width-len(label)-8, 0)
	if len(values) > room {
		values = values[len(values)-room:]
	}
	return fmt.Sprintf(" %s %s %s",
		metricLabelStyle.Render(label),
		metricValueStyle.Render(fmt.Sprintf("%3.0f%%", h.Last())),
		style.Render(RenderSparkline(values)))
}

func roundLabel(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
