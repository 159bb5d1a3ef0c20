package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"

	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "testini",
	Short: "Plain text test suites. Configured the pytest way.",
	Long: `testini runs plain-text shell test suites under a pytest.ini-style
session configuration. Discovery patterns, markers, timeouts, warning
filters, and default options all come from testini.ini (or pytest.ini).`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c",
		getEnvString("TESTINI_CONFIG", ""), "Path to configuration file (env: TESTINI_CONFIG)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
