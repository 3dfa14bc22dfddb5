// Package workflow drives one reconciliation run end to end.
//
// A Runner takes the run lock, opens the configured store, reads and maps the
// input table, classifies every unique (nomor, tahun) pair, writes the status
// column back and finally alerts recipients about revoked standards. Each
// fatal failure is returned as a services.StageError naming the stage it
// happened in. Alert delivery problems are logged and surfaced on the Summary
// instead.
package workflow
