// Command generate-golden regenerates internal/zfactor/testdata/golden.json,
// the chart of reference Z values the zfactor tests compare against.
//
//	go run ./cmd/generate-golden -out internal/zfactor/testdata/golden.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/agbru/zfactor/internal/zfactor"
)

// Axes of the golden chart. They cover the dense-gas region where both
// correlations converge from their fixed starting points.
var (
	goldenTpr = []float64{1.1, 1.3, 1.5, 2.0, 2.5, 3.0}
	goldenPpr = []float64{0.5, 1.0, 2.0, 4.0, 6.0, 8.0, 10.0}
)

type goldenPoint struct {
	Correlation string  `json:"correlation"`
	Tpr         float64 `json:"tpr"`
	Ppr         float64 `json:"ppr"`
	Z           float64 `json:"z"`
	Iterations  int     `json:"iterations"`
}

type goldenFile struct {
	Tolerance float64       `json:"tolerance"`
	Points    []goldenPoint `json:"points"`
}

// buildGolden evaluates every converging chart point for each registered
// correlation, in registry key order.
func buildGolden(factory zfactor.SolverFactory, tolerance float64) goldenFile {
	g := goldenFile{Tolerance: tolerance}
	for _, key := range factory.List() {
		solver := factory.MustGet(key)
		for _, tpr := range goldenTpr {
			for _, ppr := range goldenPpr {
				res := solver.Solve(tpr, ppr, tolerance)
				if !res.Converged {
					continue
				}
				g.Points = append(g.Points, goldenPoint{
					Correlation: key, Tpr: tpr, Ppr: ppr, Z: res.Z, Iterations: res.Iterations,
				})
			}
		}
	}
	return g
}

func writeGolden(w io.Writer, g goldenFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("generate-golden", flag.ContinueOnError)
	out := fs.String("out", "", "Output file (default stdout).")
	tol := fs.Float64("tolerance", zfactor.DefaultTolerance, "Solve tolerance.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g := buildGolden(zfactor.NewDefaultFactory(), *tol)
	if *out == "" {
		return writeGolden(stdout, g)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *out, err)
	}
	if err := writeGolden(f, g); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	return f.Close()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "generate-golden:", err)
		os.Exit(1)
	}
}
