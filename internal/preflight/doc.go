// Package preflight provides readiness checks for the filesystem paths and
// external services skknicheck depends on.
//
// The CLI "config validate" command runs the local checks (state and log
// directories, the CSV or SQLite store file) and, with --probe, also contacts
// SerpAPI and the SMTP server. Each check is gated by configuration, so
// unconfigured channels are skipped.
package preflight
