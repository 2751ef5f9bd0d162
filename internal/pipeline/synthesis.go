package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/stage"
)

func synthesisPrompt(specJSON, answersText string) string {
	return fmt.Sprintf("Clarified specification:\n%s%s\n\nProduce your ProposedDesign JSON.", specJSON, answersText)
}

func (r *Runner) runSingleSynthesis(ctx context.Context, runPath, specJSON, answersText string) (*model.ProposedDesign, error) {
	return stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "Synthesizer",
		AgentName:    agent.Synthesizer,
		Instructions: agent.SynthesizerInstructions,
		Prompt:       synthesisPrompt(specJSON, answersText),
	}, stage.DecodeJSON[model.ProposedDesign]())
}

// runVariantSynthesis produces N independent designs, each nudged by a
// distinguishing suffix, then judges them down to one. Variants are
// independent, so order does not affect the result.
func (r *Runner) runVariantSynthesis(ctx context.Context, runPath, specJSON, answersText string, count int) (*model.ProposedDesign, error) {
	base := synthesisPrompt(specJSON, answersText)
	variants := make([]*model.ProposedDesign, 0, count)

	for i := 1; i <= count; i++ {
		design, err := stage.Run(ctx, r.executor(runPath), stage.Request{
			StageName:    "Synthesizer",
			AgentName:    agent.VariantAgentName(i),
			Instructions: agent.SynthesizerInstructions,
			Prompt:       base + agent.VariantSuffix(i),
		}, stage.DecodeJSON[model.ProposedDesign]())
		if err != nil {
			return nil, err
		}
		variants = append(variants, design)
		if err := r.Store.SaveArtifactJSON(runPath, fmt.Sprintf("synthesis.variant%d.json", i), design); err != nil {
			return nil, err
		}
	}

	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return nil, err
	}
	chosen, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "DesignJudge",
		AgentName:    agent.DesignJudge,
		Instructions: agent.DesignJudgeInstructions,
		Prompt:       fmt.Sprintf("ProposedDesign variants (pick or merge into one):\n%s\n\nOutput a single ProposedDesign JSON.", variantsJSON),
	}, stage.DecodeJSON[model.ProposedDesign]())
	if err != nil {
		return nil, err
	}
	if err := r.Store.SaveArtifactJSON(runPath, "synthesis.judge.json", chosen); err != nil {
		return nil, err
	}
	return chosen, nil
}

// synthResult is the outcome of hybrid specialist synthesis.
type synthResult struct {
	Design    *model.ProposedDesign
	Paused    bool
	Questions []model.Question
}

// runSpecialistSynthesis fans out concurrently to one stage per
// specialist, waits for all of them, merges, and resolves blocking
// questions by pausing or by building assumptions.
func (r *Runner) runSpecialistSynthesis(ctx context.Context, runPath, specJSON, answersText string, opts model.PipelineOptions) (synthResult, error) {
	keys, err := agent.ParseSpecialists(opts.SynthSpecialists)
	if err != nil {
		return synthResult{}, err
	}

	prompt := fmt.Sprintf("Clarified specification:\n%s%s\n\nProduce your SpecialistSynthOutput JSON.", specJSON, answersText)

	// Fan out, barrier fan-in. Each specialist writes only its own
	// result slot; the first error wins.
	outputs := make(map[agent.SpecialistKey]*model.SpecialistSynthOutput, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, key := range keys {
		wg.Add(1)
		go func(key agent.SpecialistKey) {
			defer wg.Done()
			out, err := stage.Run(ctx, r.executor(runPath), stage.Request{
				StageName:    "SpecialistSynthesis",
				AgentName:    key.AgentName(),
				Instructions: key.Instructions(),
				Prompt:       prompt,
			}, stage.DecodeJSON[model.SpecialistSynthOutput]())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			outputs[key] = out
		}(key)
	}
	wg.Wait()
	if firstErr != nil {
		return synthResult{}, firstErr
	}

	for key, out := range outputs {
		if err := r.Store.SaveArtifactJSON(runPath, run.SpecialistArtifactName(string(key)), out); err != nil {
			return synthResult{}, err
		}
	}

	design, conflicts := mergeSpecialists(outputs)

	specialistsJSON, err := json.Marshal(outputs)
	if err != nil {
		return synthResult{}, err
	}
	mergerOut, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "Merger",
		AgentName:    agent.Merger,
		Instructions: agent.MergerInstructions,
		Prompt:       fmt.Sprintf("Clarified specification:\n%s\n\nSpecialist outputs by key:\n%s\n\nProduce your MergerOutput JSON.", specJSON, specialistsJSON),
	}, stage.DecodeJSON[model.MergerOutput]())
	if err != nil {
		return synthResult{}, err
	}

	// The deterministic merge wins; the merge stage only contributes
	// sections no specialist claimed, plus advisory conflicts.
	if mergerOut.ProposedDesign != nil {
		applyFill(design, mergerOut.ProposedDesign, missingSections(design))
	}
	conflicts = append(conflicts, mergerOut.Conflicts...)

	var questions []model.Question
	for _, key := range keys {
		if out := outputs[key]; out != nil {
			questions = append(questions, out.Questions...)
		}
	}
	questions = append(questions, mergerOut.Questions...)

	merged := model.MergerOutput{
		ProposedDesign:  design,
		MissingSections: missingSections(design),
		Conflicts:       conflicts,
		Questions:       questions,
	}
	if err := r.Store.SaveArtifactJSON(runPath, run.MergedPartialArtifact, merged); err != nil {
		return synthResult{}, err
	}

	blocking := blockingOf(questions)
	if len(blocking) > 0 {
		if err := r.Store.SaveSynthQuestions(runPath, questions); err != nil {
			return synthResult{}, err
		}
		if !opts.AllowAssumptions {
			// No ProposedDesign yet; control returns to the run state
			// machine to pause.
			return synthResult{Paused: true, Questions: questions}, nil
		}
		if err := r.runAssumptionBuilder(ctx, runPath, blocking); err != nil {
			return synthResult{}, err
		}
	}

	if missing := missingSections(design); len(missing) > 0 {
		fill, err := stage.Run(ctx, r.executor(runPath), stage.Request{
			StageName:    "SynthesizerFill",
			AgentName:    agent.SynthFill,
			Instructions: agent.FillInstructions(missing),
			Prompt:       synthesisPrompt(specJSON, answersText),
		}, stage.DecodeJSON[model.ProposedDesign]())
		if err != nil {
			return synthResult{}, err
		}
		applyFill(design, fill, missing)
	}

	return synthResult{Design: design}, nil
}

// BuildAssumptions resolves blocking questions into persisted
// assumption records so the pipeline can continue without pausing.
func (r *Runner) BuildAssumptions(ctx context.Context, runPath string, blocking []model.Question) error {
	return r.runAssumptionBuilder(ctx, runPath, blocking)
}

// runAssumptionBuilder turns blocking questions into explicit
// assumptions. Uniquely among stages, a shape failure here does not
// fail the run: a deterministic fallback assumption is synthesized per
// question instead.
func (r *Runner) runAssumptionBuilder(ctx context.Context, runPath string, blocking []model.Question) error {
	questionsJSON, err := json.Marshal(blocking)
	if err != nil {
		return err
	}

	out, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "AssumptionBuilder",
		AgentName:    agent.AssumptionBuilder,
		Instructions: agent.AssumptionBuilderInstructions,
		Prompt:       fmt.Sprintf("Blocking questions:\n%s\n\nProduce your assumptions JSON.", questionsJSON),
	}, stage.DecodeJSON[model.AssumptionBuilderOutput]())
	if err != nil && !errors.Is(err, stage.ErrInvalidShape) {
		return err
	}

	var assumptions []model.AssumptionRecord
	if err == nil && out != nil {
		assumptions = out.Assumptions
	}
	if len(assumptions) == 0 {
		assumptions = FallbackAssumptions(blocking)
	}
	return r.Store.SaveSynthAssumptions(runPath, assumptions)
}

// FallbackAssumptions builds the deterministic per-question assumption
// used when the builder stage yields nothing usable.
func FallbackAssumptions(blocking []model.Question) []model.AssumptionRecord {
	out := make([]model.AssumptionRecord, 0, len(blocking))
	for _, q := range blocking {
		out = append(out, model.AssumptionRecord{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Assumption:   "Assume TBD; design uses configurable defaults.",
			Risk:         "The chosen default may not match the real requirement.",
		})
	}
	return out
}

func blockingOf(questions []model.Question) []model.Question {
	var out []model.Question
	for _, q := range questions {
		if q.Blocking {
			out = append(out, q)
		}
	}
	return out
}
