package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/config"
	"github.com/christophervuu/flow/internal/display"
	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/queue"
	"github.com/christophervuu/flow/internal/run"
)

var (
	answerGenerator string
	answerModel     string
)

var answerCmd = &cobra.Command{
	Use:   "answer <runId>",
	Short: "Answer a paused run's blocking questions",
	Long: `Answer the blocking questions that paused a run, then resume the
pipeline. Questions come from the Clarifier or, for specialist
synthesis, from the specialists themselves; the pause source decides
which list you are shown.

Example:
  flow answer 7b0c9a4e-...`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	answerCmd.Flags().StringVarP(&answerGenerator, "generator", "g", "", "Generator to use (claude, codex)")
	answerCmd.Flags().StringVar(&answerModel, "model", "", "Model override for the generator")

	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := run.NewStore(".")
	runPath := store.RunPath(runID)
	state, err := store.LoadState(runPath)
	if err != nil {
		return err
	}
	if state.Status != run.StatusAwaitingClarifications {
		return &run.StateError{Status: state.Status, Want: run.StatusAwaitingClarifications}
	}

	questions, err := pendingQuestions(store, runPath)
	if err != nil {
		return err
	}

	d := display.New(os.Stdout)
	d.ShowQuestions(questions)

	answers, err := collectAnswers(os.Stdin, os.Stdout, questions)
	if err != nil {
		return err
	}

	// A clarifier pause has no clarified spec yet; build it now from
	// the draft plus these answers. A synthesis pause keeps the spec
	// as built and carries the answers in the resume prompt.
	if !store.HasArtifact(runPath, run.ClarifiedSpecArtifact) {
		clarifier, err := store.LoadClarifier(runPath)
		if err != nil {
			return err
		}
		draft := clarifier.ClarifiedSpecDraft
		if draft == nil {
			draft = &model.ClarifiedSpecDraft{}
		}
		spec := model.ClarifiedSpecFromDraft(draft, answers)
		if err := store.SaveClarifiedSpec(runPath, spec); err != nil {
			return err
		}
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	generatorName := cfg.Generator
	if cmd.Flags().Changed("generator") {
		generatorName = answerGenerator
	}
	modelName := cfg.Model
	if cmd.Flags().Changed("model") {
		modelName = answerModel
	}
	gen, err := generate.New(generatorName, &generate.Config{Model: modelName})
	if err != nil {
		return err
	}

	opts, err := store.LoadOptions(runPath)
	if err != nil {
		return err
	}

	item := queue.WorkItem{RunID: runID, RunPath: runPath, Options: opts, Answers: answers}
	if err := executeItem(cmd.Context(), store, gen, d, item); err != nil {
		return err
	}

	var input model.RunInput
	title := runID
	if err := store.LoadInput(runPath, &input); err == nil && input.Title != "" {
		title = input.Title
	}
	indexRun(store, runID, title)
	return reportOutcome(store, d, runID, runPath, opts)
}

// pendingQuestions returns the blocking questions a paused run is
// waiting on: the specialist synthesis list when one was persisted,
// otherwise the Clarifier's.
func pendingQuestions(store *run.Store, runPath string) ([]model.Question, error) {
	if store.HasArtifact(runPath, run.SynthQuestionsArtifact) {
		questions, err := store.LoadSynthQuestions(runPath)
		if err != nil {
			return nil, err
		}
		return blockingOnly(questions), nil
	}
	clarifier, err := store.LoadClarifier(runPath)
	if err != nil {
		return nil, err
	}
	return clarifier.BlockingQuestions(), nil
}

func blockingOnly(questions []model.Question) []model.Question {
	var out []model.Question
	for _, q := range questions {
		if q.Blocking {
			out = append(out, q)
		}
	}
	return out
}

// collectAnswers prompts for one answer per blocking question. An
// empty line skips the question, leaving it unanswered.
func collectAnswers(in *os.File, out *os.File, questions []model.Question) (map[string]string, error) {
	reader := bufio.NewReader(in)
	answers := make(map[string]string)

	for _, q := range questions {
		fmt.Fprintf(out, "%s %s\n> ", display.StyleBold.Render(q.ID+":"), q.Text)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("read answer for %s: %w", q.ID, err)
		}
		answer := strings.TrimSpace(line)
		if answer != "" {
			answers[q.ID] = answer
		}
	}
	return answers, nil
}
