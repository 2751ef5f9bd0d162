package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/display"
	"github.com/christophervuu/flow/internal/index"
	"github.com/christophervuu/flow/internal/run"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs in this directory",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Max runs to show")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	idx, err := index.Open(".")
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := reindexMissing(idx); err != nil {
		return err
	}

	entries, err := idx.List(listLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No runs yet. Start one with: flow start \"<prompt>\"")
		return nil
	}

	out := os.Stdout
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-22s  %s  %s\n",
			display.StyleMuted.Render(e.RunID),
			renderStatus(run.Status(e.Status)),
			index.FormatTimeAgo(e.CreatedAt),
			truncateTitle(e.Title, 48),
		)
	}
	return nil
}

// reindexMissing backfills runs that exist on disk but not in the
// index, e.g. runs created before the index database existed.
func reindexMissing(idx *index.Index) error {
	store := run.NewStore(".")
	ids, err := store.ListRunIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		existing, err := idx.Get(id)
		if err != nil {
			return err
		}

		runPath := store.RunPath(id)
		state, err := store.LoadState(runPath)
		if err != nil {
			continue
		}
		if existing != nil && existing.Status == string(state.Status) {
			continue
		}

		title := id
		var input struct {
			Title string `json:"title"`
		}
		if err := store.LoadInput(runPath, &input); err == nil && input.Title != "" {
			title = input.Title
		}

		created, _ := time.Parse(time.RFC3339Nano, state.CreatedAt)
		updated, _ := time.Parse(time.RFC3339Nano, state.UpdatedAt)
		if err := idx.Upsert(index.Entry{
			RunID:     id,
			Title:     title,
			Status:    string(state.Status),
			CreatedAt: created,
			UpdatedAt: updated,
		}); err != nil {
			return err
		}
	}
	return nil
}

func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
