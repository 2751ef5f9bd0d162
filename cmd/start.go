package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/christophervuu/flow/internal/config"
	"github.com/christophervuu/flow/internal/display"
	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/index"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/queue"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/section"

	// Register available generators
	_ "github.com/christophervuu/flow/internal/generate/claude"
	_ "github.com/christophervuu/flow/internal/generate/codex"
)

// Start command flags
var (
	startTitle            string
	startSections         []string
	startVariants         int
	startDeepCritique     bool
	startSpecialists      []string
	startAllowAssumptions bool
	startTrace            bool
	startGenerator        string
	startModel            string
)

var startCmd = &cobra.Command{
	Use:   "start <prompt>",
	Short: "Start a design pipeline run",
	Long: `Start a run: the Clarifier analyzes the prompt, then the pipeline
synthesizes a design, critiques it, optimizes it and publishes a design
document under .flow/runs/<runId>/published/.

If the Clarifier raises blocking questions and --allow-assumptions is
not set, the run pauses; answer with 'flow answer <runId>'.

Examples:
  flow start "design a distributed rate limiter"
  flow start "payments service" --title "Payments" --variants 3
  flow start "audit log" --specialists architecture,security --allow-assumptions
  flow start "job scheduler" --sections overview,architecture,work_breakdown`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startTitle, "title", "", "Run title (defaults to the prompt)")
	startCmd.Flags().StringSliceVar(&startSections, "sections", nil, "Section ids for the published doc (default: minimal set)")
	startCmd.Flags().IntVar(&startVariants, "variants", 1, "Synthesis variants, judged down to one (1-5)")
	startCmd.Flags().BoolVar(&startDeepCritique, "deep-critique", false, "Critique with four personas plus a judge")
	startCmd.Flags().StringSliceVar(&startSpecialists, "specialists", nil, "Specialist synthesizers (architecture, contracts, requirements, ops, security)")
	startCmd.Flags().BoolVar(&startAllowAssumptions, "allow-assumptions", false, "Turn blocking questions into assumptions instead of pausing")
	startCmd.Flags().BoolVar(&startTrace, "trace", false, "Print the trace log path when done")
	startCmd.Flags().StringVarP(&startGenerator, "generator", "g", "", "Generator to use (claude, codex)")
	startCmd.Flags().StringVar(&startModel, "model", "", "Model override for the generator")

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	opts := cfg.Options()
	if cmd.Flags().Changed("variants") {
		opts.Variants = startVariants
	}
	if cmd.Flags().Changed("deep-critique") {
		opts.DeepCritique = startDeepCritique
	}
	if cmd.Flags().Changed("specialists") {
		opts.SynthSpecialists = startSpecialists
	}
	if cmd.Flags().Changed("allow-assumptions") {
		opts.AllowAssumptions = startAllowAssumptions
	}
	if cmd.Flags().Changed("trace") {
		opts.Trace = startTrace
	}

	sectionsRaw := cfg.Sections
	if cmd.Flags().Changed("sections") {
		sectionsRaw = startSections
	}
	sections, err := section.Normalize(sectionsRaw)
	if err != nil {
		return err
	}

	generatorName := cfg.Generator
	if cmd.Flags().Changed("generator") {
		generatorName = startGenerator
	}
	modelName := cfg.Model
	if cmd.Flags().Changed("model") {
		modelName = startModel
	}
	gen, err := generate.New(generatorName, &generate.Config{Model: modelName})
	if err != nil {
		return err
	}

	title := startTitle
	if title == "" {
		title = prompt
	}

	store := run.NewStore(".")
	runID := uuid.NewString()
	runPath, err := store.EnsureRunDir(runID)
	if err != nil {
		return err
	}

	input := model.RunInput{Title: title, Prompt: prompt, IncludedSections: sections}
	if err := store.SaveInput(runPath, input); err != nil {
		return err
	}
	if err := store.SaveState(runPath, run.NewState(runID)); err != nil {
		return err
	}
	if err := store.SaveOptions(runPath, opts); err != nil {
		return err
	}
	if opts.UseSpecialists() {
		sel := model.SynthSelection{
			SynthSpecialists: opts.SynthSpecialists,
			AllowAssumptions: opts.AllowAssumptions,
		}
		if err := store.SaveSynthSelection(runPath, sel); err != nil {
			return err
		}
	}

	d := display.New(os.Stdout)
	d.ShowRunHeader(runID, title, gen.Name())

	item := queue.WorkItem{RunID: runID, RunPath: runPath, Clarify: true, Options: opts}
	if err := executeItem(cmd.Context(), store, gen, d, item); err != nil {
		return err
	}

	indexRun(store, runID, title)
	return reportOutcome(store, d, runID, runPath, opts)
}

// executeItem pushes one work item through the background queue and
// waits for the single consumer to drain it.
func executeItem(ctx context.Context, store *run.Store, gen generate.Generator, d *display.Display, item queue.WorkItem) error {
	worker := &queue.Worker{Store: store, Gen: gen, Sink: d.Sink()}
	q := queue.New()
	q.Enqueue(item)
	q.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Drain(ctx, worker.Handle)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		<-done
		return ctx.Err()
	}
}

// indexRun refreshes the sqlite catalog, best effort: the run directory
// stays authoritative when the index cannot be written.
func indexRun(store *run.Store, runID, title string) {
	state, err := store.LoadState(store.RunPath(runID))
	if err != nil {
		return
	}
	idx, err := index.Open(".")
	if err != nil {
		return
	}
	defer idx.Close()

	created, _ := time.Parse(time.RFC3339Nano, state.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, state.UpdatedAt)
	_ = idx.Upsert(index.Entry{
		RunID:     runID,
		Title:     title,
		Status:    string(state.Status),
		CreatedAt: created,
		UpdatedAt: updated,
	})
}

// reportOutcome renders the run's final state for this invocation.
func reportOutcome(store *run.Store, d *display.Display, runID, runPath string, opts model.PipelineOptions) error {
	state, err := store.LoadState(runPath)
	if err != nil {
		return err
	}

	switch state.Status {
	case run.StatusCompleted:
		d.ShowCompleted(runID, store.DesignMarkdownPath(runPath))
		if opts.Trace {
			d.ShowInfo("Trace log: %s\n", run.TracePath(runPath))
		}
		return nil
	case run.StatusAwaitingClarifications:
		questions, err := pendingQuestions(store, runPath)
		if err != nil {
			return err
		}
		d.ShowQuestions(questions)
		d.ShowInfo("Answer with: flow answer %s\n", runID)
		return nil
	case run.StatusFailed:
		d.ShowError(fmt.Sprintf("run %s failed; see %s", runID, run.TracePath(runPath)))
		return fmt.Errorf("run %s failed", runID)
	default:
		return fmt.Errorf("run %s in unexpected state %s", runID, state.Status)
	}
}
