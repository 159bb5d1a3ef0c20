package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List the markers declared in the configuration",
	RunE:  markersCommand,
}

func markersCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	if registry.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no markers declared")
		return nil
	}

	for _, m := range registry.List() {
		if m.Description != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Name, m.Description)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), m.Name)
		}
	}
	return nil
}
