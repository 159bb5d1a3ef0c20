package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/testini/testini/packages/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded sessions",
	RunE:  historyListCommand,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the case outcomes of one session",
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded sessions",
	RunE:  historyClearCommand,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of sessions to list")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	cfg, err := loadSession()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(configDir(cfg), history.DefaultFilename))
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d passed, %d failed, %d skipped  (%.2fs)\n",
			s.ID, s.StartedAt.Local().Format(time.DateTime),
			s.Passed, s.Failed, s.Skipped, s.Duration.Seconds())
	}
	return nil
}

func historyShowCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := store.Session(args[0])
	if err != nil {
		return err
	}
	records, err := store.Cases(sess.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "session %s started %s\n\n",
		sess.ID, sess.StartedAt.Local().Format(time.DateTime))
	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s (%dms)\n", rec.Status, rec.CaseID, rec.Duration.Milliseconds())
		if rec.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "           %s\n", rec.Error)
		}
	}
	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
	return nil
}
