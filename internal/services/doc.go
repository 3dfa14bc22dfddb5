// Package services defines shared utilities consumed by the run stages and
// the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run ID and stage name for logging.
//   - Structured error markers plus the Wrap helper that record which stage
//     (auth, fetch, classify, write, notify) a failure came from, so the CLI
//     can report it and choose the exit status.
//
// Use these helpers when wiring new stage logic so error reporting stays
// uniform across the run.
package services
