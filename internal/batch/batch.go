// Package batch loads lists of Z-factor cases from TOML or YAML files.
//
// A TOML file uses an array of tables:
//
//	[[case]]
//	name = "separator"
//	tpr = 1.6
//	ppr = 8.82
//	correlation = "hy"
//
// A YAML file uses a top-level "cases" sequence with the same keys.
// Correlation and tolerance are optional and fall back to the run defaults.
package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/zfactor/internal/errors"
)

// Format identifies the encoding of a batch file.
type Format int

const (
	// FormatTOML is the TOML encoding.
	FormatTOML Format = iota
	// FormatYAML is the YAML encoding.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Case is one state point to evaluate.
type Case struct {
	Name        string  `toml:"name" yaml:"name"`
	Tpr         float64 `toml:"tpr" yaml:"tpr"`
	Ppr         float64 `toml:"ppr" yaml:"ppr"`
	Correlation string  `toml:"correlation" yaml:"correlation"`
	Tolerance   float64 `toml:"tolerance" yaml:"tolerance"`
}

// document is the on-disk layout.
type document struct {
	Cases []Case `toml:"case" yaml:"cases"`
}

// DetectFormat chooses the decoder from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, apperrors.NewConfigError("unsupported batch file extension %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads and validates the cases in path.
func Load(path string) ([]Case, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "reading batch file")
	}
	cases, err := Parse(data, format)
	if err != nil {
		return nil, apperrors.WrapError(err, "batch file %s", path)
	}
	return cases, nil
}

// Parse decodes cases from data. Unknown keys are rejected so that typos such
// as "tr" for "tpr" do not silently evaluate at zero.
func Parse(data []byte, format Format) ([]Case, error) {
	var doc document
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, apperrors.ValidationError{Field: undecoded[0].String(), Message: "unknown key"}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}

	if len(doc.Cases) == 0 {
		return nil, apperrors.ValidationError{Field: "case", Message: "no cases defined"}
	}
	for i := range doc.Cases {
		c := &doc.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return doc.Cases, nil
}

func (c Case) validate() error {
	if !(c.Tpr > 0) {
		return apperrors.ValidationError{Field: c.Name + ".tpr", Message: "must be positive"}
	}
	if c.Ppr < 0 {
		return apperrors.ValidationError{Field: c.Name + ".ppr", Message: "must not be negative"}
	}
	if c.Tolerance < 0 {
		return apperrors.ValidationError{Field: c.Name + ".tolerance", Message: "must not be negative"}
	}
	return nil
}

// WithDefaults fills in the correlation and tolerance left empty in the file.
func (c Case) WithDefaults(correlation string, tolerance float64) Case {
	if c.Correlation == "" {
		c.Correlation = correlation
	}
	c.Correlation = strings.ToLower(c.Correlation)
	if c.Tolerance == 0 {
		c.Tolerance = tolerance
	}
	return c
}
