package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testini/testini/packages/report"
)

var reportQuery string

var reportCmd = &cobra.Command{
	Use:   "report <report.json>",
	Short: "Validate and query a JSON report",
	Long: `Validate a report written with -o json against its schema, and
optionally evaluate a query expression against it.

Examples:
  testini report results.json
  testini report results.json --query summary.failed
  testini report results.json --query 'tests.#(status=="failed").id'`,
	Args: cobra.ExactArgs(1),
	RunE: reportCommand,
}

func init() {
	reportCmd.Flags().StringVarP(&reportQuery, "query", "Q", "", "Query expression to evaluate against the report")
}

func reportCommand(cmd *cobra.Command, args []string) error {
	r, err := report.Load(args[0])
	if err != nil {
		return err
	}

	if reportQuery != "" {
		result, err := r.Query(reportQuery)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", args[0])
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nfailed cases:\n")
		for _, id := range failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", id)
		}
	}
	return nil
}
