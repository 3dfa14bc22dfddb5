package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"skknicheck/internal/records"
	"skknicheck/internal/services"
	"skknicheck/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts workflow.Options
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify every SKKNI reference and write the status column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return runFailure(services.Wrap(services.ErrConfiguration, services.StageStartup, "validate credentials", "", err))
			}
			searcher, err := ctx.newSearcher()
			if err != nil {
				return runFailure(services.Wrap(services.ErrConfiguration, services.StageStartup, "build search client", "", err))
			}

			summary, err := ctx.newRunner(searcher).Run(cmd.Context(), opts)
			if err != nil {
				return runFailure(err)
			}
			if asJSON {
				return writeJSON(cmd, newJSONSummary(summary))
			}
			printSummary(cmd.OutOrStdout(), summary, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Classify without writing the store or sending alerts")
	cmd.Flags().BoolVar(&opts.NoNotify, "no-notify", false, "Write the store but skip alert delivery")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func runFailure(err error) error {
	stage := services.StageOf(err)
	if stage == "" {
		stage = "unknown"
	}
	return fmt.Errorf("run failed at stage %s: %w", stage, err)
}

func printSummary(out io.Writer, summary workflow.Summary, colorize bool) {
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Rows: %d (without nomor/tahun: %d)  Lookups: %d\n\n", summary.Rows, summary.Skipped, len(summary.Lookups))

	countRows := make([][]string, 0, 4)
	for _, status := range records.Statuses() {
		countRows = append(countRows, []string{colorStatus(status, colorize), strconv.Itoa(summary.Counts[status])})
	}
	fmt.Fprintln(out, renderTable([]string{"Status", "Rows"}, countRows, []columnAlignment{alignLeft, alignRight}))

	if len(summary.Lookups) > 0 {
		lookupRows := make([][]string, 0, len(summary.Lookups))
		for _, lookup := range summary.Lookups {
			note := ""
			if lookup.Err != nil {
				note = lookup.Err.Error()
			}
			lookupRows = append(lookupRows, []string{
				strconv.Itoa(lookup.Pair.Number),
				strconv.Itoa(lookup.Pair.Year),
				colorStatus(lookup.Status, colorize),
				strconv.Itoa(lookup.Hits),
				note,
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Nomor", "Tahun", "Status", "Hits", "Error"},
			lookupRows,
			[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft},
		))
	}

	fmt.Fprintln(out)
	if len(summary.Alerts) == 0 {
		fmt.Fprintln(out, "No revoked SKKNI found")
	} else {
		alertRows := make([][]string, 0, len(summary.Alerts))
		for _, alert := range summary.Alerts {
			alertRows = append(alertRows, []string{alert.SchemeName, strconv.Itoa(alert.Number), strconv.Itoa(alert.Year)})
		}
		fmt.Fprintf(out, "Revoked SKKNI (%d):\n", len(summary.Alerts))
		fmt.Fprintln(out, renderTable([]string{"Nama Skema", "Nomor", "Tahun"}, alertRows, []columnAlignment{alignLeft, alignRight, alignRight}))
	}

	fmt.Fprintln(out)
	if summary.DryRun {
		fmt.Fprintln(out, "Dry run: store not written, alerts not sent")
		return
	}
	fmt.Fprintf(out, "Status column written: %s\n", yesNo(summary.Written))
	fmt.Fprintf(out, "Alert sent: %s\n", yesNo(summary.Notified))
	if summary.NotifyErr != nil {
		fmt.Fprintln(out, renderStatusLine("Alert delivery", statusWarn, summary.NotifyErr.Error(), colorize))
	}
}
