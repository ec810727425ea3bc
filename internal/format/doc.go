// Package format holds the pure string formatting helpers shared by the CLI
// presenters: durations, progress bars with ETA and Z-factor values.
package format
