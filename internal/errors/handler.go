package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used to highlight error output.
// A nil provider prints without colour.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleCalculationError prints err to out and maps it to an exit code.
// A nil error maps to ExitSuccess and prints nothing.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	red, yellow, reset := "", "", ""
	if colors != nil {
		red, yellow, reset = colors.Red(), colors.Yellow(), colors.Reset()
	}

	durationSuffix := ""
	if duration > 0 {
		durationSuffix = fmt.Sprintf(" after %s", duration)
	}

	var convErr NonConvergenceError
	var configErr ConfigError
	var validationErr ValidationError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sTimeout%s: calculation exceeded its deadline%s.\n", yellow, reset, durationSuffix)
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sCanceled%s: calculation interrupted%s.\n", yellow, reset, durationSuffix)
		return ExitErrorCanceled
	case errors.As(err, &convErr):
		fmt.Fprintf(out, "%sNot converged%s: %v\n", yellow, reset, convErr)
		return ExitErrorNotConverged
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		fmt.Fprintf(out, "%sConfiguration error%s: %v\n", red, reset, err)
		return ExitErrorConfig
	default:
		fmt.Fprintf(out, "%sError%s: %v%s\n", red, reset, err, durationSuffix)
		return ExitErrorGeneric
	}
}
