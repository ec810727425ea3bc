package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/zfactor/internal/format"
	"github.com/agbru/zfactor/internal/orchestration"
	"github.com/agbru/zfactor/internal/ui"
)

// zDecimals is the precision of Z in tables unless verbose output is on.
const zDecimals = 6

// formatZ renders Z at table precision, or at full precision when verbose.
func formatZ(z float64, verbose bool) string {
	if verbose {
		return format.FormatFloat(z)
	}
	return format.FormatZ(z, zDecimals)
}

// newTable returns a table styled with the active theme. Cells listed in
// warn are highlighted; keys are {row, col} in data coordinates.
func newTable(warn map[[2]int]bool, headers ...string) *table.Table {
	th := ui.GetCurrentTableTheme()
	headerStyle := lipgloss.NewStyle().Foreground(th.Header).Bold(ui.GetCurrentTheme().Name != ui.NoColorTheme.Name).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(th.Value).Padding(0, 1)
	warnStyle := lipgloss.NewStyle().Foreground(th.Warn).Padding(0, 1)
	firstColStyle := lipgloss.NewStyle().Foreground(th.Dim).Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case warn[[2]int{row, col}]:
				return warnStyle
			case col == 0:
				return firstColStyle
			default:
				return cellStyle
			}
		})
}

func statusText(r orchestration.CalculationResult) string {
	switch {
	case r.Err != nil:
		return "failed: " + r.Err.Error()
	case r.Result.Converged:
		return "converged"
	default:
		return "not converged"
	}
}

// RenderComparisonTable renders one row per correlation.
func RenderComparisonTable(results []orchestration.CalculationResult, verbose, details bool) string {
	headers := []string{"Correlation", "Z", "Iterations", "Status", "Duration"}
	if details {
		headers = append(headers, "Raw", "Residual")
	}
	warn := make(map[[2]int]bool)
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{r.Name, formatZ(r.Result.Z, verbose), strconv.Itoa(r.Result.Iterations), statusText(r), format.FormatExecutionDuration(r.Duration)}
		if r.Err != nil {
			row[1], row[2], row[4] = "-", "-", "-"
		}
		if details {
			row = append(row, formatZ(r.Result.Raw, verbose), format.FormatFloat(r.Result.Residual))
		}
		if r.Err != nil || !r.Result.Converged {
			warn[[2]int{i, 3}] = true
		}
		rows = append(rows, row)
	}
	return newTable(warn, headers...).Rows(rows...).String()
}

// RenderGridTable renders Z with Tpr down the side and Ppr across the top.
// Points that did not converge are marked with an asterisk.
func RenderGridTable(grid orchestration.GridResult, verbose bool) string {
	headers := make([]string, 0, len(grid.PprAxis)+1)
	headers = append(headers, "Tpr \\ Ppr")
	for _, ppr := range grid.PprAxis {
		headers = append(headers, format.FormatFloat(roundAxis(ppr)))
	}

	warn := make(map[[2]int]bool)
	rows := make([][]string, len(grid.Rows))
	for i, r := range grid.Rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, format.FormatFloat(roundAxis(grid.TprAxis[i])))
		for j, cell := range r {
			switch {
			case cell.Err != nil:
				row = append(row, "-")
				warn[[2]int{i, j + 1}] = true
			case !cell.Result.Converged:
				row = append(row, formatZ(cell.Result.Z, verbose)+"*")
				warn[[2]int{i, j + 1}] = true
			default:
				row = append(row, formatZ(cell.Result.Z, verbose))
			}
		}
		rows[i] = row
	}
	return newTable(warn, headers...).Rows(rows...).String()
}

// RenderBatchTable renders one row per case and correlation.
func RenderBatchTable(results []orchestration.CaseResult, verbose, details bool) string {
	headers := []string{"Case", "Correlation", "Tpr", "Ppr", "Z", "Status"}
	if details {
		headers = append(headers, "Iterations", "Residual")
	}
	warn := make(map[[2]int]bool)
	var rows [][]string
	for _, cr := range results {
		for _, r := range cr.Results {
			row := []string{cr.Case.Name, r.Name, format.FormatFloat(cr.Case.Tpr), format.FormatFloat(cr.Case.Ppr), formatZ(r.Result.Z, verbose), statusText(r)}
			if r.Err != nil {
				row[4] = "-"
			}
			if details {
				row = append(row, strconv.Itoa(r.Result.Iterations), format.FormatFloat(r.Result.Residual))
			}
			if r.Err != nil || !r.Result.Converged {
				warn[[2]int{len(rows), 5}] = true
			}
			rows = append(rows, row)
		}
	}
	return newTable(warn, headers...).Rows(rows...).String()
}

// roundAxis trims float noise from axis labels such as 0.30000000000000004.
func roundAxis(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 9, 64), 64)
	return f
}
