package cli

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/agbru/zfactor/internal/orchestration"
)

// Number is a float that encodes NaN and infinities as JSON null instead of
// failing the whole document. YAML encodes them natively as .nan and .inf.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// Record is the flat, serialisable form of one evaluation.
type Record struct {
	Case        string `json:"case,omitempty" yaml:"case,omitempty"`
	Correlation string `json:"correlation" yaml:"correlation"`
	Tpr         Number `json:"tpr" yaml:"tpr"`
	Ppr         Number `json:"ppr" yaml:"ppr"`
	Z           Number `json:"z" yaml:"z"`
	Raw         Number `json:"raw" yaml:"raw"`
	Iterations  int    `json:"iterations" yaml:"iterations"`
	Residual    Number `json:"residual" yaml:"residual"`
	Converged   bool   `json:"converged" yaml:"converged"`
	DurationNS  int64  `json:"duration_ns" yaml:"duration_ns"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRecord flattens a calculation result.
func NewRecord(caseName string, r orchestration.CalculationResult) Record {
	corr := r.Key
	if corr == "" {
		corr = r.Name
	}
	rec := Record{
		Case:        caseName,
		Correlation: corr,
		Tpr:         Number(r.Tpr),
		Ppr:         Number(r.Ppr),
		Z:           Number(r.Result.Z),
		Raw:         Number(r.Result.Raw),
		Iterations:  r.Result.Iterations,
		Residual:    Number(r.Result.Residual),
		Converged:   r.Result.Converged,
		DurationNS:  r.Duration.Nanoseconds(),
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// Report is the document written for json and yaml output.
type Report struct {
	RunID   string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Mode    string       `json:"mode" yaml:"mode"`
	Grid    *GridSummary `json:"grid,omitempty" yaml:"grid,omitempty"`
	Results []Record     `json:"results" yaml:"results"`
}

// GridSummary describes the axes of a grid report. Z is row-major, one row
// per Tpr value.
type GridSummary struct {
	Correlation  string     `json:"correlation" yaml:"correlation"`
	Tpr          []Number   `json:"tpr" yaml:"tpr"`
	Ppr          []Number   `json:"ppr" yaml:"ppr"`
	Z            [][]Number `json:"z" yaml:"z"`
	NonConverged int        `json:"non_converged" yaml:"non_converged"`
}

func numbers(vals []float64) []Number {
	out := make([]Number, len(vals))
	for i, v := range vals {
		out[i] = Number(v)
	}
	return out
}

// NewGridSummary condenses a grid into its axes and Z matrix.
func NewGridSummary(g orchestration.GridResult) *GridSummary {
	z := make([][]Number, len(g.Rows))
	for i, row := range g.Rows {
		z[i] = make([]Number, len(row))
		for j, cell := range row {
			z[i][j] = Number(cell.Result.Z)
		}
	}
	return &GridSummary{
		Correlation:  g.Key,
		Tpr:          numbers(g.TprAxis),
		Ppr:          numbers(g.PprAxis),
		Z:            z,
		NonConverged: g.NonConverged(),
	}
}

var csvHeader = []string{"case", "correlation", "tpr", "ppr", "z", "raw", "iterations", "residual", "converged", "duration_ns", "error"}

func formatFloat(n Number) string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// WriteCSV writes records with a header row.
func WriteCSV(out io.Writer, records []Record) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Case,
			r.Correlation,
			formatFloat(r.Tpr),
			formatFloat(r.Ppr),
			formatFloat(r.Z),
			formatFloat(r.Raw),
			strconv.Itoa(r.Iterations),
			formatFloat(r.Residual),
			strconv.FormatBool(r.Converged),
			strconv.FormatInt(r.DurationNS, 10),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(out io.Writer, report Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteYAML writes the report as YAML.
func WriteYAML(out io.Writer, report Report) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
