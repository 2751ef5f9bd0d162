package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/run"
)

var showArtifact string

var showCmd = &cobra.Command{
	Use:   "show <runId>",
	Short: "Print a run's published design document",
	Long: `Print the published design document for a completed run, or a named
intermediate artifact.

Examples:
  flow show 7b0c9a4e-...
  flow show 7b0c9a4e-... --artifact critique.json
  flow show 7b0c9a4e-... --artifact synth/mergedPartial.json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showArtifact, "artifact", "", "Artifact path relative to the run's artifacts directory")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := run.NewStore(".")
	runPath := store.RunPath(runID)
	if !store.Exists(runID) {
		return run.ErrNotFound
	}

	if showArtifact != "" {
		var raw json.RawMessage
		if err := store.LoadArtifactJSON(runPath, showArtifact, &raw); err != nil {
			return err
		}
		pretty, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(pretty))
		return nil
	}

	doc, err := store.LoadDesignMarkdown(runPath)
	if err != nil {
		return fmt.Errorf("no published design document for run %s (is it completed?): %w", runID, err)
	}
	fmt.Fprint(os.Stdout, doc)
	return nil
}
