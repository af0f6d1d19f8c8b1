// Package logging assembles structured slog loggers and formatting helpers used
// across slasher.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the group and file being processed. Every record emitted during
// a run carries the run_id so console output, the optional log file, and the
// manifest can be correlated. A no-op logger is provided for tests and wiring
// code that cannot fail.
package logging
