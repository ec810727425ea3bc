// Package apperrors holds the exit codes and error types of the zfactor
// command: configuration and validation failures, strict-mode
// non-convergence, and the mapping from an error to an exit code.
//
// The zfactor core never returns errors; these types describe failures of the
// surrounding application only.
package apperrors
