package preflight

import (
	"context"
	"net/http"

	"skknicheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects which checks RunAll performs.
type Options struct {
	// Network enables checks that contact SerpAPI and the SMTP server.
	Network bool
	// HTTPClient overrides the client used for HTTP probes.
	HTTPClient *http.Client
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	switch cfg.Store.Backend {
	case config.BackendCSV:
		results = append(results, CheckFileReadable("CSV input", cfg.Store.CSV.InputPath))
	case config.BackendSQLite:
		results = append(results, CheckFileReadable("SQLite database", cfg.Store.SQLite.Path))
	}

	if !opts.Network {
		return results
	}

	results = append(results, CheckSearch(ctx, opts.HTTPClient, cfg.Search.BaseURL, cfg.Search.APIKey))
	if cfg.EmailEnabled() {
		email := cfg.Notifications.Email
		results = append(results, CheckSMTP(ctx, email.Host, email.Port))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
