package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"skknicheck/internal/classify"
	"skknicheck/internal/records"
)

func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "rules",
		Short:       "Print the classification rules in evaluation order",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rules := classify.Default().Rules()
			rows := make([][]string, 0, len(rules)+1)
			for i, rule := range rules {
				rows = append(rows, []string{strconv.Itoa(i + 1), rule.Pattern.String(), colorStatus(rule.Status, colorize)})
			}
			rows = append(rows, []string{strconv.Itoa(len(rules) + 1), "(no match)", colorStatus(records.StatusNotFound, colorize)})
			fmt.Fprintln(out, renderTable([]string{"Order", "Pattern", "Status"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintln(out, "Result titles and snippets are joined and upper-cased before matching; the first matching rule wins.")
			return nil
		},
	}
}
