package config

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/zfactor/internal/errors"
)

var testCorrelations = []string{"dak", "hy"}

func TestParseConfig_Defaults(t *testing.T) {
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-tpr", "1.6", "-ppr", "8.82"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v (output %s)", err, buf.String())
	}
	if cfg.Tpr != 1.6 || cfg.Ppr != 8.82 {
		t.Errorf("Tpr/Ppr = %v/%v", cfg.Tpr, cfg.Ppr)
	}
	if cfg.Correlation != DefaultCorrelation {
		t.Errorf("Correlation = %q, want %q", cfg.Correlation, DefaultCorrelation)
	}
	if cfg.Tolerance != DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", cfg.Tolerance, DefaultTolerance)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Mode() != ModeSingle {
		t.Errorf("Mode = %v, want ModeSingle", cfg.Mode())
	}
}

func TestParseConfig_Flags(t *testing.T) {
	var buf bytes.Buffer
	args := []string{"-grid", "-correlation", "HY", "-format", "CSV", "-o", "out.csv", "-q", "-workers", "3", "-timeout", "5s"}
	cfg, err := ParseConfig("zfactor", args, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Mode() != ModeGrid {
		t.Errorf("Mode = %v, want ModeGrid", cfg.Mode())
	}
	if cfg.Correlation != "hy" || cfg.Format != FormatCSV {
		t.Errorf("Correlation/Format not normalised: %q/%q", cfg.Correlation, cfg.Format)
	}
	if cfg.OutputFile != "out.csv" || !cfg.Quiet || cfg.Workers != 3 || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestMode_Precedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  AppConfig
		want Mode
	}{
		{"single", AppConfig{}, ModeSingle},
		{"grid", AppConfig{Grid: true}, ModeGrid},
		{"batch over grid", AppConfig{Grid: true, BatchFile: "c.toml"}, ModeBatch},
		{"tui over batch", AppConfig{TUI: true, BatchFile: "c.toml"}, ModeTUI},
		{"interactive over tui", AppConfig{TUI: true, Interactive: true}, ModeInteractive},
		{"server over interactive", AppConfig{ServeAddr: ":8080", Interactive: true}, ModeServer},
		{"completion first", AppConfig{Completion: "bash", ServeAddr: ":8080"}, ModeCompletion},
	}
	for _, tt := range tests {
		if got := tt.cfg.Mode(); got != tt.want {
			t.Errorf("%s: Mode = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseConfig_TUIValidatesGrid(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ParseConfig("zfactor", []string{"-tui", "-tpr-step", "0"}, &buf, testCorrelations); err == nil {
		t.Error("expected a grid validation error in dashboard mode")
	}
	cfg, err := ParseConfig("zfactor", []string{"-tui"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Mode() != ModeTUI {
		t.Errorf("Mode = %v, want ModeTUI", cfg.Mode())
	}
}

func TestParseConfig_Serve(t *testing.T) {
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-serve", "127.0.0.1:9000"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Mode() != ModeServer || cfg.ServeAddr != "127.0.0.1:9000" {
		t.Errorf("Mode = %v, ServeAddr = %q", cfg.Mode(), cfg.ServeAddr)
	}
}

func TestParseConfig_ServeFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"SERVE", ":8081")
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", nil, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.ServeAddr != ":8081" {
		t.Errorf("ServeAddr = %q, want :8081", cfg.ServeAddr)
	}
}

func TestParseConfig_Theme(t *testing.T) {
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-tpr", "1.6", "-theme", "LIGHT"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}

	buf.Reset()
	if _, err := ParseConfig("zfactor", []string{"-tpr", "1.6", "-theme", "neon"}, &buf, testCorrelations); err == nil {
		t.Error("expected an error for an unknown theme")
	}
	if !strings.Contains(buf.String(), "unknown theme") {
		t.Errorf("error output = %q", buf.String())
	}
}

func TestParseConfig_ThemeFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"THEME", "none")
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-tpr", "1.6"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Theme != "none" {
		t.Errorf("Theme = %q, want none", cfg.Theme)
	}
}

func TestParseConfig_Help(t *testing.T) {
	var buf bytes.Buffer
	_, err := ParseConfig("zfactor", []string{"-h"}, &buf, testCorrelations)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ZFACTOR_TPR", "2.0")
	t.Setenv("ZFACTOR_PPR", "0.147")
	t.Setenv("ZFACTOR_CORRELATION", "hy")
	t.Setenv("ZFACTOR_STRICT", "yes")
	t.Setenv("ZFACTOR_TIMEOUT", "1m")

	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-correlation", "dak"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Tpr != 2.0 || cfg.Ppr != 0.147 {
		t.Errorf("env Tpr/Ppr not applied: %v/%v", cfg.Tpr, cfg.Ppr)
	}
	if cfg.Correlation != "dak" {
		t.Errorf("explicit flag must win over env, got %q", cfg.Correlation)
	}
	if !cfg.Strict || cfg.Timeout != time.Minute {
		t.Errorf("env Strict/Timeout not applied: %+v", cfg)
	}
}

func TestParseConfig_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("ZFACTOR_TOLERANCE", "not-a-number")
	var buf bytes.Buffer
	cfg, err := ParseConfig("zfactor", []string{"-tpr", "1.5"}, &buf, testCorrelations)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if cfg.Tolerance != DefaultTolerance {
		t.Errorf("invalid env value should be ignored, got %v", cfg.Tolerance)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := AppConfig{
		Tpr: 1.6, Ppr: 8.82, Correlation: "dak", Tolerance: 1e-6,
		Format: FormatText, Timeout: time.Second, Theme: DefaultTheme,
		TprMin: 1.05, TprMax: 3, TprStep: 0.05, PprMin: 0.2, PprMax: 15, PprStep: 0.2,
	}
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid single", func(*AppConfig) {}, false},
		{"all correlations", func(c *AppConfig) { c.Correlation = AllCorrelations }, false},
		{"unknown correlation", func(c *AppConfig) { c.Correlation = "pr" }, true},
		{"zero tolerance", func(c *AppConfig) { c.Tolerance = 0 }, true},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, true},
		{"negative workers", func(c *AppConfig) { c.Workers = -1 }, true},
		{"bad format", func(c *AppConfig) { c.Format = "xml" }, true},
		{"light theme", func(c *AppConfig) { c.Theme = "light" }, false},
		{"unknown theme", func(c *AppConfig) { c.Theme = "orange" }, true},
		{"missing tpr", func(c *AppConfig) { c.Tpr = 0 }, true},
		{"negative ppr", func(c *AppConfig) { c.Ppr = -1 }, true},
		{"grid ignores tpr", func(c *AppConfig) { c.Grid = true; c.Tpr = 0 }, false},
		{"grid zero step", func(c *AppConfig) { c.Grid = true; c.PprStep = 0 }, true},
		{"grid inverted range", func(c *AppConfig) { c.Grid = true; c.TprMin = 4 }, true},
		{"batch ignores tpr", func(c *AppConfig) { c.BatchFile = "cases.toml"; c.Tpr = 0 }, false},
		{"interactive ignores tpr", func(c *AppConfig) { c.Interactive = true; c.Tpr = 0 }, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate(testCorrelations)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var configErr apperrors.ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("expected ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestApplyAdaptiveWorkers(t *testing.T) {
	t.Parallel()
	if got := ApplyAdaptiveWorkers(AppConfig{Workers: 7}).Workers; got != 7 {
		t.Errorf("explicit workers overwritten: %d", got)
	}
	if got := ApplyAdaptiveWorkers(AppConfig{}).Workers; got < 1 {
		t.Errorf("estimated workers = %d, want >= 1", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true}, {"YES", false, true}, {"1", false, true},
		{"false", true, false}, {"No", true, false}, {"0", true, false},
		{"maybe", true, true}, {"maybe", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
