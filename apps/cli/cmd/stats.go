package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [case-id]",
	Short: "Show duration percentiles from recorded sessions",
	Long: `Show duration statistics over the recorded sessions, either for
every case or for one case id.

Examples:
  testini stats
  testini stats "tests/test_fleet.suite::TestScooters::test_assign"`,
	Args: cobra.MaximumNArgs(1),
	RunE: statsCommand,
}

func statsCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	caseID := ""
	if len(args) > 0 {
		caseID = args[0]
	}

	stats, err := store.DurationStats(caseID)
	if err != nil {
		return err
	}

	if caseID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", caseID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "samples  %d\n", stats.Samples)
	fmt.Fprintf(cmd.OutOrStdout(), "min      %s\n", stats.Min)
	fmt.Fprintf(cmd.OutOrStdout(), "mean     %s\n", stats.Mean)
	fmt.Fprintf(cmd.OutOrStdout(), "p50      %s\n", stats.P50)
	fmt.Fprintf(cmd.OutOrStdout(), "p95      %s\n", stats.P95)
	fmt.Fprintf(cmd.OutOrStdout(), "p99      %s\n", stats.P99)
	fmt.Fprintf(cmd.OutOrStdout(), "max      %s\n", stats.Max)
	return nil
}
