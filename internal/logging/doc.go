// Package logging assembles the slog loggers used by pagesmith commands.
//
// It owns the console and JSON handlers, maps configured levels and outputs
// onto them, and defines the structured field keys shared by the parser,
// renderer, record store, and upload pipeline. Console output colors level
// labels only when the destination is a terminal.
//
// A no-op logger is provided for tests and for wiring code that runs before
// configuration is available.
package logging
