package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"skknicheck/internal/classify"
	"skknicheck/internal/records"
	"skknicheck/internal/search"
)

type checkResult struct {
	Nomor  int             `json:"nomor"`
	Tahun  int             `json:"tahun"`
	Query  string          `json:"query"`
	Status string          `json:"status"`
	Hits   []search.Result `json:"hits"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check NOMOR TAHUN",
		Short: "Look up a single SKKNI and print its classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, ok := records.ParseInt(args[0])
			if !ok {
				return fmt.Errorf("invalid nomor %q", args[0])
			}
			year, ok := records.ParseInt(args[1])
			if !ok {
				return fmt.Errorf("invalid tahun %q", args[1])
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSearchCredentials(); err != nil {
				return err
			}
			searcher, err := ctx.newSearcher()
			if err != nil {
				return err
			}

			query := search.QueryFor(records.Pair{Number: number, Year: year}, cfg.Search.Site)
			hits, err := searcher.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("lookup %d/%d: %w", number, year, err)
			}
			classifier := classify.Default()
			status := classifier.Classify(hits)

			if asJSON {
				if hits == nil {
					hits = []search.Result{}
				}
				return writeJSON(cmd, checkResult{Nomor: number, Tahun: year, Query: query, Status: status.String(), Hits: hits})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Query:  %s\n", query)
			fmt.Fprintf(out, "Status: %s\n", colorStatus(status, colorize))
			if len(hits) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			rows := make([][]string, 0, len(hits))
			for i, hit := range hits {
				matched := classifier.ClassifyText(hit.Title + " " + hit.Snippet)
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					truncate(hit.Title, 60),
					truncate(hit.Snippet, 80),
					colorStatus(matched, colorize),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"#", "Title", "Snippet", "Match"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the lookup as JSON")
	return cmd
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
