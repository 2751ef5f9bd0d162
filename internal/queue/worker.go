package queue

import (
	"context"
	"fmt"

	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/pipeline"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/section"
	"github.com/christophervuu/flow/internal/trace"
)

// Worker executes dequeued work items against the run store. Any error
// escaping a work item forces that run to Failed; a failure while
// writing the Failed status itself is swallowed, leaving the trace log
// as the record of what happened.
type Worker struct {
	Store *run.Store
	Gen   generate.Generator

	// Sink, when set, receives each trace event after it is written to
	// the log. Foreground runs hang a terminal display off it.
	Sink trace.Sink
}

// Handle processes one work item. It never returns an error: failures
// are absorbed into the run's status.
func (w *Worker) Handle(ctx context.Context, item WorkItem) {
	if err := w.handle(ctx, item); err != nil {
		_ = w.Store.SetStatus(item.RunPath, run.StatusFailed)
	}
}

func (w *Worker) handle(ctx context.Context, item WorkItem) error {
	// Background runs always trace; status reconstruction for detached
	// runs reads nothing else.
	writer, err := trace.NewWriter(run.TracePath(item.RunPath))
	if err != nil {
		return err
	}
	defer writer.Close()

	sink := trace.Sink(writer.Append)
	if w.Sink != nil {
		extra := w.Sink
		sink = func(evt trace.Event) {
			writer.Append(evt)
			extra(evt)
		}
	}

	runner := &pipeline.Runner{Gen: w.Gen, Store: w.Store, Sink: sink}
	if item.Clarify {
		return w.clarify(ctx, runner, item)
	}
	return w.resume(ctx, runner, item)
}

// clarify runs the Clarifier stage and, unless blocked, chains straight
// into the remaining pipeline.
func (w *Worker) clarify(ctx context.Context, runner *pipeline.Runner, item WorkItem) error {
	var input model.RunInput
	if err := w.Store.LoadInput(item.RunPath, &input); err != nil {
		return err
	}
	sections, err := section.Normalize(input.IncludedSections)
	if err != nil {
		return err
	}

	res, err := runner.RunClarifier(ctx, item.RunPath, input.Title, input.Prompt)
	if err != nil {
		return err
	}
	if res.HasBlocking {
		if !item.Options.AllowAssumptions {
			return w.Store.SetStatus(item.RunPath, run.StatusAwaitingClarifications)
		}
		if err := runner.BuildAssumptions(ctx, item.RunPath, res.Output.BlockingQuestions()); err != nil {
			return err
		}
	}

	draft := res.Output.ClarifiedSpecDraft
	if draft == nil {
		draft = &model.ClarifiedSpecDraft{Title: input.Title, ProblemStatement: input.Prompt}
	}
	spec := model.ClarifiedSpecFromDraft(draft, nil)
	if err := w.Store.SaveClarifiedSpec(item.RunPath, spec); err != nil {
		return err
	}

	return w.finish(ctx, runner, item, spec, nil, sections)
}

// resume restarts the remaining pipeline for a run that paused on
// blocking questions, carrying the caller's answers.
func (w *Worker) resume(ctx context.Context, runner *pipeline.Runner, item WorkItem) error {
	if err := w.Store.SetStatus(item.RunPath, run.StatusRunning); err != nil {
		return err
	}

	var input model.RunInput
	if err := w.Store.LoadInput(item.RunPath, &input); err != nil {
		return err
	}
	sections, err := section.Normalize(input.IncludedSections)
	if err != nil {
		return err
	}
	spec, err := w.Store.LoadClarifiedSpec(item.RunPath)
	if err != nil {
		return err
	}

	return w.finish(ctx, runner, item, spec, item.Answers, sections)
}

func (w *Worker) finish(
	ctx context.Context,
	runner *pipeline.Runner,
	item WorkItem,
	spec model.ClarifiedSpec,
	answers map[string]string,
	sections []string,
) error {
	result, err := runner.RunRemaining(ctx, item.RunPath, spec, answers, sections, item.Options)
	if err != nil {
		return err
	}
	if result.Paused {
		return w.Store.SetStatus(item.RunPath, run.StatusAwaitingClarifications)
	}
	if result.Published == nil {
		return fmt.Errorf("run %s finished without a published package", item.RunID)
	}
	return w.Store.SetStatus(item.RunPath, run.StatusCompleted)
}
