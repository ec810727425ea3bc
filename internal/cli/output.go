// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayProgress].
//
//   - Render* functions return a rendered table without performing I/O.
//     Examples: [RenderComparisonTable], [RenderGridTable].
//
//   - Write* functions serialise data to a writer or a file.
//     Examples: [WriteCSV], [WriteResultsToFile].

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/zfactor/internal/config"
	"github.com/agbru/zfactor/internal/ui"
)

// OutputHeader describes the run that produced an output file. It is written
// as comment lines for text, csv and yaml output; json output carries only
// the run ID inside the document.
type OutputHeader struct {
	RunID       string
	Mode        string
	Correlation string
	Tolerance   float64
	Generated   time.Time
}

// WriteResultsToFile renders results with render and stores them at path,
// creating parent directories as needed.
//
// Parameters:
//   - path: Destination file. Empty means no file output.
//   - formatName: The output format, used to decide on the comment header.
//   - header: Run metadata.
//   - render: Writes the results body.
//
// Returns:
//   - error: An error if rendering or writing fails.
func WriteResultsToFile(path, formatName string, header OutputHeader, render func(io.Writer) error) error {
	if path == "" {
		return nil
	}

	var buf bytes.Buffer
	if formatName != config.FormatJSON {
		writeHeader(&buf, header)
	}
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, h OutputHeader) {
	generated := h.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	fmt.Fprintf(w, "# Z-factor results\n")
	fmt.Fprintf(w, "# Run: %s\n", h.RunID)
	fmt.Fprintf(w, "# Generated: %s\n", generated.Format(time.RFC3339))
	fmt.Fprintf(w, "# Mode: %s\n", h.Mode)
	fmt.Fprintf(w, "# Correlation: %s\n", h.Correlation)
	fmt.Fprintf(w, "# Tolerance: %g\n", h.Tolerance)
}

// DisplaySavedTo confirms where results were written.
func DisplaySavedTo(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}
