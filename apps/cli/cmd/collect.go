package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testini/testini/packages/core/discovery"
)

var collectCmd = &cobra.Command{
	Use:   "collect [paths...]",
	Short: "List the tests that would run, without running them",
	Long: `Collect test cases under the configured testpaths (or the given
paths) and print them, without executing anything.

Examples:
  testini collect
  testini collect tests/`,
	RunE: collectCommand,
}

func collectCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}

	roots := cfg.TestPaths
	if len(args) > 0 {
		roots = args
	}

	items, err := discovery.FromConfig(cfg).Collect(roots)
	if err != nil {
		return err
	}

	lastFile := ""
	for _, item := range items {
		if item.Suite.Path != lastFile {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", item.Suite.Path)
			lastFile = item.Suite.Path
		}
		name := item.Case.Name
		if item.Case.Group != "" {
			name = item.Case.Group + "::" + name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
		if len(item.Case.Markers) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "    markers: %v\n", item.Case.Markers)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d cases collected\n", len(items))
	return nil
}
