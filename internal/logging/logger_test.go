package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// entries decodes the JSON lines written by a ZerologAdapter.
func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewLogger_TagsComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "zfactor").Info("run started", String("run_id", "abc"))

	got := entries(t, &buf)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	e := got[0]
	if e["component"] != "zfactor" || e["run_id"] != "abc" || e["message"] != "run started" || e["level"] != "info" {
		t.Errorf("entry = %v", e)
	}
	if _, ok := e["time"]; !ok {
		t.Error("entry should carry a timestamp")
	}
}

func TestWithLevel_Filters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level     zerolog.Level
		wantLevel []string
	}{
		{zerolog.DebugLevel, []string{"debug", "info", "error"}},
		{zerolog.InfoLevel, []string{"info", "error"}},
		{zerolog.ErrorLevel, []string{"error"}},
		{zerolog.Disabled, nil},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			l := NewLogger(&buf, "zfactor").WithLevel(tt.level)
			l.Debug("solve", Int("iterations", 7))
			l.Info("run finished")
			l.Error("writing metrics", errors.New("disk full"))

			got := entries(t, &buf)
			if len(got) != len(tt.wantLevel) {
				t.Fatalf("got %d entries, want %d: %s", len(got), len(tt.wantLevel), buf.String())
			}
			for i, want := range tt.wantLevel {
				if got[i]["level"] != want {
					t.Errorf("entry %d level = %v, want %s", i, got[i]["level"], want)
				}
			}
		})
	}
}

func TestWithLevel_LeavesOriginalUntouched(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	base := NewLogger(&buf, "zfactor")
	_ = base.WithLevel(zerolog.ErrorLevel)
	base.Info("still logged")
	if len(entries(t, &buf)) != 1 {
		t.Errorf("WithLevel must not change the receiver: %q", buf.String())
	}
}

func TestZerologAdapter_TypedFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "orchestration").Debug("solve",
		String("correlation", "dak"),
		Float64("tpr", 1.6),
		Float64("ppr", 8.82),
		Int("iterations", 7),
		Uint64("points", 10),
		Bool("converged", true),
		Field{Key: "axis", Value: []float64{1, 2}},
	)

	e := entries(t, &buf)[0]
	want := map[string]any{
		"correlation": "dak",
		"tpr":         1.6,
		"ppr":         8.82,
		"iterations":  float64(7),
		"points":      float64(10),
		"converged":   true,
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("%s = %v (%T), want %v", k, e[k], e[k], v)
		}
	}
	if axis, ok := e["axis"].([]any); !ok || len(axis) != 2 {
		t.Errorf("axis = %v, want a two-element array", e["axis"])
	}
}

func TestZerologAdapter_ErrorCarriesCause(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "server").Error("server failed", errors.New("address in use"), String("addr", ":8080"))

	e := entries(t, &buf)[0]
	if e["level"] != "error" || e["error"] != "address in use" || e["addr"] != ":8080" {
		t.Errorf("entry = %v", e)
	}
}

func TestErrField(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "server").Debug("request rejected", Err(errors.New("bad tpr")))
	if e := entries(t, &buf)[0]; e["error"] != "bad tpr" {
		t.Errorf("error field = %v", e["error"])
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	var _ Logger = Nop()
	l := Nop()
	l.Info("ignored")
	l.Debug("ignored")
	l.Error("ignored", errors.New("x"))
}
