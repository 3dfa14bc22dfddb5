// Package logging assembles structured slog loggers and formatting helpers used
// across skknicheck.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so run code can tag log lines
// with the run ID and stage. Warnings about degraded lookups go through
// WarnWithContext so every line carries event_type, error_hint and impact.
// NewNop gives tests and optional wiring a logger that never fails.
package logging
