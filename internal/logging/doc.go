// Package logging provides the logging interface used by the Z-factor tools,
// backed by zerolog. Every entry carries a component tag, and the level set
// with -log-level is applied per logger.
package logging
