package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <runId>",
	Short: "Watch a run's progress live",
	Long: `Watch a run's stage progress in a full-screen view, refreshed from
the run's trace log. Exits when the run reaches a terminal status.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := run.NewStore(".")
	if !store.Exists(runID) {
		return run.ErrNotFound
	}

	program := tea.NewProgram(tui.NewWatch(store, runID), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
