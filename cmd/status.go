package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/display"
	"github.com/christophervuu/flow/internal/pipeline"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/trace"
)

var statusCmd = &cobra.Command{
	Use:   "status <runId>",
	Short: "Show a run's status and stage progress",
	Long: `Show the run's status plus per-stage progress reconstructed from the
trace log. Runs started without tracing fall back to inferring progress
from which artifacts exist.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := run.NewStore(".")
	runPath := store.RunPath(runID)
	state, err := store.LoadState(runPath)
	if err != nil {
		return err
	}

	opts, err := store.LoadOptions(runPath)
	if err != nil {
		return err
	}
	plan := pipeline.ExpectedAgents(opts)

	progress := runProgress(store, runPath, plan)

	out := os.Stdout
	fmt.Fprintf(out, "%s %s\n", display.StyleBold.Render("Run:"), state.RunID)
	fmt.Fprintf(out, "%s %s\n", display.StyleBold.Render("Status:"), renderStatus(state.Status))
	fmt.Fprintf(out, "%s %s\n", display.StyleBold.Render("Updated:"), state.UpdatedAt)
	fmt.Fprintln(out)

	for _, agent := range progress.Completed {
		fmt.Fprintf(out, "  %s %s\n", display.StyleSuccess.Render("[ok]"), agent)
	}
	for _, agent := range progress.Active {
		fmt.Fprintf(out, "  %s %s\n", display.StyleInfo.Render("[..]"), agent)
	}
	for _, agent := range progress.Pending {
		fmt.Fprintf(out, "  %s %s\n", display.StyleMuted.Render("[  ]"), agent)
	}
	return nil
}

// runProgress reconstructs stage progress, preferring the trace log and
// falling back to artifact inference when there is none.
func runProgress(store *run.Store, runPath string, plan []string) trace.Progress {
	events, err := trace.ReadFile(run.TracePath(runPath))
	if err == nil && len(events) > 0 {
		return trace.Reconstruct(events, plan)
	}
	return trace.FromCompleted(store.CompletedAgents(runPath), plan)
}

func renderStatus(status run.Status) string {
	switch status {
	case run.StatusCompleted:
		return display.StyleSuccess.Render(string(status))
	case run.StatusFailed:
		return display.StyleError.Render(string(status))
	case run.StatusAwaitingClarifications:
		return display.StyleWarning.Render(string(status))
	default:
		return display.StyleInfo.Render(string(status))
	}
}
