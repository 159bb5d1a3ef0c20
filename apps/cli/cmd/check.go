package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testini/testini/packages/core/discovery"
	"github.com/testini/testini/packages/core/suite"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check the configuration and suite files for errors",
	Long: `Check the session configuration and every discovered suite file
for syntax errors, without executing anything.

Examples:
  testini check
  testini check tests/`,
	RunE: checkCommand,
}

func checkCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", cfg.Path)
	}

	roots := cfg.TestPaths
	if len(args) > 0 {
		roots = args
	}

	files, err := discovery.FromConfig(cfg).Files(roots)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no suite files found under %v", roots)
	}

	hasErrors := false
	for _, file := range files {
		if _, err := suite.ParseFile(file); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return fmt.Errorf("check failed")
	}
	return nil
}
