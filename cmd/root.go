package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "flow",
	Short: "Flow - design document pipeline driven by AI generators",
	Long: `Flow turns a short design request into a reviewed, structured
design document by driving an AI text generator through a fixed
pipeline: clarify, synthesize, critique, optimize, publish.

Workflow:
  flow start "design a rate limiter"   Start a run
  flow answer <runId>                  Answer blocking questions
  flow status <runId>                  Show pipeline progress
  flow show <runId>                    Print the published design doc
  flow list                            List runs
  flow watch <runId>                   Live progress view

Artifacts live under .flow/runs/<runId>/ in the current directory.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv(".")
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
