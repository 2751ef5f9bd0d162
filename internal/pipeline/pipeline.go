// Package pipeline routes a run through clarification, design
// synthesis, critique, optimization and publication. Stage topology is
// fixed; options select between single-pass, variant and specialist
// synthesis strategies.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/section"
	"github.com/christophervuu/flow/internal/stage"
	"github.com/christophervuu/flow/internal/trace"
)

// Runner executes pipeline stages for one run.
type Runner struct {
	Gen   generate.Generator
	Store *run.Store
	Sink  trace.Sink
}

func (r *Runner) executor(runPath string) *stage.Executor {
	return &stage.Executor{Gen: r.Gen, Store: r.Store, RunPath: runPath, Sink: r.Sink}
}

// ClarifierResult is the outcome of the Clarifier stage.
type ClarifierResult struct {
	Output      *model.ClarifierOutput
	HasBlocking bool
}

// RunClarifier runs the Clarifier stage over the caller's title and
// prompt and persists its output.
func (r *Runner) RunClarifier(ctx context.Context, runPath, title, prompt string) (ClarifierResult, error) {
	fullPrompt := fmt.Sprintf("Title: %s\n\nInitial prompt from the user:\n%s\n\nAnalyze this and produce your ClarifierOutput JSON.", title, prompt)

	out, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "Clarifier",
		AgentName:    agent.Clarifier,
		Instructions: agent.ClarifierInstructions,
		Prompt:       fullPrompt,
	}, stage.DecodeJSON[model.ClarifierOutput]())
	if err != nil {
		return ClarifierResult{}, err
	}

	if err := r.Store.SaveClarifier(runPath, out); err != nil {
		return ClarifierResult{}, err
	}
	return ClarifierResult{Output: out, HasBlocking: out.HasBlockingQuestions()}, nil
}

/// Result is the outcome of the remaining pipeline: either a published
// package, or a pause for unanswered blocking questions raised during
// specialist synthesis.
type Result struct {
	Design    *model.ProposedDesign
	Critique  *model.Critique
	Optimized *model.OptimizedDesign
	Published *model.PublishedPackage

	// Paused is set when hybrid synthesis raised blocking questions and
	// assumptions were not allowed; Questions then holds the full list.
	Paused    bool
	Questions []model.Question
}

// RunRemaining drives everything after clarification: synthesis,
// critique, optimization and publication. sections must already be
// normalized. A stage error aborts the whole run; there is no
// partial-pipeline recovery.
func (r *Runner) RunRemaining(
	ctx context.Context,
	runPath string,
	spec model.ClarifiedSpec,
	answers map[string]string,
	sections []string,
	opts model.PipelineOptions,
) (Result, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return Result{}, err
	}
	answersText := formatAnswers(answers)

	var proposed *model.ProposedDesign
	switch {
	case opts.UseSpecialists():
		synth, err := r.runSpecialistSynthesis(ctx, runPath, string(specJSON), answersText, opts)
		if err != nil {
			return Result{}, err
		}
		if synth.Paused {
			return Result{Paused: true, Questions: synth.Questions}, nil
		}
		proposed = synth.Design
	case opts.VariantsClamped() > 1:
		proposed, err = r.runVariantSynthesis(ctx, runPath, string(specJSON), answersText, opts.VariantsClamped())
		if err != nil {
			return Result{}, err
		}
	default:
		proposed, err = r.runSingleSynthesis(ctx, runPath, string(specJSON), answersText)
		if err != nil {
			return Result{}, err
		}
	}

	if err := r.Store.SaveProposedDesign(runPath, proposed); err != nil {
		return Result{}, err
	}
	proposedJSON, err := json.Marshal(proposed)
	if err != nil {
		return Result{}, err
	}

	var critique *model.Critique
	if opts.DeepCritique {
		critique, err = r.runDeepCritique(ctx, runPath, string(proposedJSON))
	} else {
		critique, err = stage.Run(ctx, r.executor(runPath), stage.Request{
			StageName:    "Challenger",
			AgentName:    agent.Challenger,
			Instructions: agent.ChallengerInstructions,
			Prompt:       fmt.Sprintf("Proposed design:\n%s\n\nProduce your Critique JSON.", proposedJSON),
		}, stage.DecodeJSON[model.Critique]())
	}
	if err != nil {
		return Result{}, err
	}
	if err := r.Store.SaveCritique(runPath, critique); err != nil {
		return Result{}, err
	}
	critiqueJSON, err := json.Marshal(critique)
	if err != nil {
		return Result{}, err
	}

	optimized, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "Optimizer",
		AgentName:    agent.Optimizer,
		Instructions: agent.OptimizerInstructions,
		Prompt:       fmt.Sprintf("Proposed design:\n%s\n\nCritique:\n%s\n\nProduce your OptimizedDesign JSON.", proposedJSON, critiqueJSON),
	}, stage.DecodeJSON[model.OptimizedDesign]())
	if err != nil {
		return Result{}, err
	}
	if err := r.Store.SaveOptimizedDesign(runPath, optimized); err != nil {
		return Result{}, err
	}
	optimizedJSON, err := json.Marshal(optimized)
	if err != nil {
		return Result{}, err
	}

	published, err := r.runPublisher(ctx, runPath, string(specJSON), string(proposedJSON), string(critiqueJSON), string(optimizedJSON), sections)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Design:    proposed,
		Critique:  critique,
		Optimized: optimized,
		Published: published,
	}, nil
}

func (r *Runner) runPublisher(ctx context.Context, runPath, specJSON, proposedJSON, critiqueJSON, optimizedJSON string, sections []string) (*model.PublishedPackage, error) {
	prompt := fmt.Sprintf(
		"Clarified spec: %s\nProposed design: %s\nCritique: %s\nOptimized design: %s\n\nProduce your PublishedPackage JSON containing only the listed sections.",
		specJSON, proposedJSON, critiqueJSON, optimizedJSON)

	published, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "Publisher",
		AgentName:    agent.Publisher,
		Instructions: agent.PublisherInstructions(section.HeadingMapping(sections)),
		Prompt:       prompt,
	}, stage.DecodeJSON[model.PublishedPackage]())
	if err != nil {
		return nil, err
	}

	published.IncludedSections = sections
	// Without work_breakdown the package carries no issue or PR plan,
	// regardless of what the model returned.
	if !section.Contains(sections, "work_breakdown") {
		published.Issues = []model.Issue{}
		published.PRPlan = []string{}
	}

	if err := r.Store.SavePublishedPackage(runPath, published); err != nil {
		return nil, err
	}
	return published, nil
}

func formatAnswers(answers map[string]string) string {
	if len(answers) == 0 {
		return ""
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	b.WriteString("\n\nUser-provided answers to blocking questions:\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "%s: %s\n", id, answers[id])
	}
	return strings.TrimRight(b.String(), "\n")
}
