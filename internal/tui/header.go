package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/zfactor/internal/format"
)

// HeaderModel renders the top bar: title, version, run ID and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	runID     string
	width     int
}

// NewHeaderModel creates a header whose timer starts now.
func NewHeaderModel(version, runID string) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version, runID: runID}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the running or frozen duration.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Z-factor Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	left := titleStyle.Render(titleText) +
		dimStyle.Render(" | ") +
		elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))

	right := ""
	if h.runID != "" {
		right = dimStyle.Render("run " + shortID(h.runID))
	}

	gap := h.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right, gap = "", max(h.width-2-lipgloss.Width(left), 0)
	}
	return headerStyle.Width(h.width).Render(left + strings.Repeat(" ", gap) + right)
}

// shortID trims a UUID to its first group.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
