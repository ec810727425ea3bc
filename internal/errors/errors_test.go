package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCodesAreDistinct(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"success":       ExitSuccess,
		"generic":       ExitErrorGeneric,
		"timeout":       ExitErrorTimeout,
		"not converged": ExitErrorNotConverged,
		"config":        ExitErrorConfig,
		"canceled":      ExitErrorCanceled,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, dup := seen[code]; dup {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		seen[code] = name
	}
	// Shells report SIGINT as 128+2.
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled = %d, want 130", ExitErrorCanceled)
	}
}

func TestNonConvergenceError_Message(t *testing.T) {
	t.Parallel()
	err := NonConvergenceError{Correlation: "Dranchuk-Abou-Kassem", Tpr: 1.05, Ppr: 14.8, Iterations: 1000, Residual: 3.2e-4}
	msg := err.Error()
	for _, want := range []string{"Dranchuk-Abou-Kassem", "Tpr=1.05", "Ppr=14.8", "1000 iterations", "0.00032"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q should contain %q", msg, want)
		}
	}
}

// A strict-mode failure travels wrapped through orchestration and must still
// select the not-converged exit code.
func TestNonConvergenceError_WrappedMapsToExitCode(t *testing.T) {
	t.Parallel()
	inner := NonConvergenceError{Correlation: "Hall-Yarborough", Tpr: 1.2, Ppr: 3, Iterations: 1000}
	err := WrapError(inner, "case %q", "separator")

	var nc NonConvergenceError
	if !errors.As(err, &nc) || nc.Ppr != 3 {
		t.Fatalf("errors.As did not recover the NonConvergenceError from %v", err)
	}
	var sb strings.Builder
	if code := HandleCalculationError(err, 0, &sb, nil); code != ExitErrorNotConverged {
		t.Errorf("exit code = %d, want %d", code, ExitErrorNotConverged)
	}
	if !strings.Contains(sb.String(), `case "separator"`) {
		t.Errorf("output %q should keep the wrapping context", sb.String())
	}
}

func TestConfigAndValidationErrors_MapToConfigExit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", NewConfigError("unknown correlation %q (available: %s)", "pr", "dak, hy"), `unknown correlation "pr" (available: dak, hy)`},
		{"validation", ValidationError{Field: "ppr-step", Message: "must be positive"}, `validation error for "ppr-step": must be positive`},
		{"wrapped validation", WrapError(ValidationError{Field: "tpr", Message: "is required"}, "cases.toml"), `cases.toml: validation error for "tpr": is required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			var sb strings.Builder
			if code := HandleCalculationError(tt.err, 0, &sb, nil); code != ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", code, ExitErrorConfig)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "grid") != nil {
		t.Error("wrapping nil must return nil")
	}
	err := WrapError(context.Canceled, "grid evaluation interrupted")
	if err.Error() != "grid evaluation interrupted: context canceled" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("wrapped error should match context.Canceled")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want bool
	}{
		{context.Canceled, true},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("batch: %w", context.DeadlineExceeded), true},
		{NonConvergenceError{}, false},
		{errors.New("disk full"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsContextError(tt.err); got != tt.want {
			t.Errorf("IsContextError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
