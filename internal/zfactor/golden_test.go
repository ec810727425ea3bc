package zfactor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

type goldenPoint struct {
	Correlation string  `json:"correlation"`
	Tpr         float64 `json:"tpr"`
	Ppr         float64 `json:"ppr"`
	Z           float64 `json:"z"`
	Iterations  int     `json:"iterations"`
}

// TestGoldenChart checks a chart of converged points across the dense-gas
// region. Platform libm differences can move the last digits, so values are
// compared at 1e-9 relative.
func TestGoldenChart(t *testing.T) {
	t.Parallel()
	data, err := os.ReadFile(filepath.Join("testdata", "golden.json"))
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}
	var golden struct {
		Tolerance float64       `json:"tolerance"`
		Points    []goldenPoint `json:"points"`
	}
	if err := json.Unmarshal(data, &golden); err != nil {
		t.Fatalf("decoding golden file: %v", err)
	}
	if len(golden.Points) == 0 {
		t.Fatal("golden file has no points")
	}

	for _, p := range golden.Points {
		t.Run(fmt.Sprintf("%s/tpr=%v,ppr=%v", p.Correlation, p.Tpr, p.Ppr), func(t *testing.T) {
			t.Parallel()
			c, err := ParseCorrelation(p.Correlation)
			if err != nil {
				t.Fatal(err)
			}
			res := Solve(p.Tpr, p.Ppr, c, golden.Tolerance)
			if !res.Converged {
				t.Fatalf("did not converge: %+v", res)
			}
			if math.Abs(res.Z-p.Z) > 1e-9*math.Abs(p.Z) {
				t.Errorf("Z = %.17g, want %.17g", res.Z, p.Z)
			}
		})
	}
}
