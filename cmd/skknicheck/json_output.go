package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"skknicheck/internal/reconcile"
	"skknicheck/internal/records"
	"skknicheck/internal/workflow"
)

type jsonLookup struct {
	Nomor  int    `json:"nomor"`
	Tahun  int    `json:"tahun"`
	Query  string `json:"query"`
	Status string `json:"status"`
	Hits   int    `json:"hits"`
	Error  string `json:"error,omitempty"`
}

type jsonSummary struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	DurationMS  int64             `json:"duration_ms"`
	Rows        int               `json:"rows"`
	SkippedRows int               `json:"skipped_rows"`
	Counts      map[string]int    `json:"counts"`
	Statuses    []string          `json:"statuses"`
	Lookups     []jsonLookup      `json:"lookups"`
	Alerts      []reconcile.Alert `json:"alerts"`
	Written     bool              `json:"written"`
	Notified    bool              `json:"notified"`
	NotifyError string            `json:"notify_error,omitempty"`
	DryRun      bool              `json:"dry_run"`
}

func newJSONSummary(s workflow.Summary) jsonSummary {
	out := jsonSummary{
		RunID:       s.RunID,
		StartedAt:   s.StartedAt,
		DurationMS:  s.Duration.Milliseconds(),
		Rows:        s.Rows,
		SkippedRows: s.Skipped,
		Counts:      make(map[string]int, 4),
		Statuses:    records.Labels(s.Records),
		Lookups:     make([]jsonLookup, 0, len(s.Lookups)),
		Alerts:      s.Alerts,
		Written:     s.Written,
		Notified:    s.Notified,
		DryRun:      s.DryRun,
	}
	if out.Alerts == nil {
		out.Alerts = []reconcile.Alert{}
	}
	for _, status := range records.Statuses() {
		out.Counts[status.String()] = s.Counts[status]
	}
	for _, lookup := range s.Lookups {
		entry := jsonLookup{
			Nomor:  lookup.Pair.Number,
			Tahun:  lookup.Pair.Year,
			Query:  lookup.Query,
			Status: lookup.Status.String(),
			Hits:   lookup.Hits,
		}
		if lookup.Err != nil {
			entry.Error = lookup.Err.Error()
		}
		out.Lookups = append(out.Lookups, entry)
	}
	if s.NotifyErr != nil {
		out.NotifyError = s.NotifyErr.Error()
	}
	return out
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
