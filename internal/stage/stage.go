// Package stage runs one bounded unit of work against the generation
// capability: send a prompt, validate the JSON-shaped response, retry
// once with a corrective instruction, persist raw output on failure.
package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/trace"
)

// RetryPrompt is the fixed corrective instruction prepended to the
// single retry after a parse failure.
const RetryPrompt = "Your previous response was not valid JSON. You must output valid JSON matching the schema."

// ErrInvalidShape means the generator's output did not parse into the
// expected shape even after the one retry.
var ErrInvalidShape = errors.New("invalid output shape")

// InvalidShapeError names the artifact the raw output was persisted to.
type InvalidShapeError struct {
	AgentName    string
	ArtifactPath string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("%s produced invalid JSON after retry; raw output saved to artifacts/%s", e.AgentName, e.ArtifactPath)
}

func (e *InvalidShapeError) Unwrap() error { return ErrInvalidShape }

// Request identifies one stage call.
type Request struct {
	StageName    string
	AgentName    string
	Instructions string
	Prompt       string
}

// Executor binds a generator, a run's persistence and an event sink.
type Executor struct {
	Gen     generate.Generator
	Store   *run.Store
	RunPath string
	Sink    trace.Sink
}

func (e *Executor) emit(evt trace.Event) {
	if e.Sink != nil {
		e.Sink(evt)
	}
}

// Run executes one stage: invoke the generator, parse, and on parse
// failure persist the raw text and retry exactly once with the
// corrective prompt. Transport failures from the generator propagate
// immediately and are never retried here. Trace events never contain
// prompt or response text.
func Run[T any](ctx context.Context, e *Executor, req Request, parse func(string) (T, bool)) (T, error) {
	var zero T
	start := time.Now()
	e.emit(trace.Event{Kind: trace.KindStageStart, StageName: req.StageName, AgentName: req.AgentName})

	text, err := e.Gen.Generate(ctx, req.Instructions, req.Prompt)
	if err != nil {
		return zero, err
	}
	e.emit(trace.Event{Kind: trace.KindModelCall, StageName: req.StageName, AgentName: req.AgentName, DurationMs: time.Since(start).Milliseconds()})

	if result, ok := parse(text); ok {
		e.emit(trace.Event{Kind: trace.KindStageEnd, StageName: req.StageName, AgentName: req.AgentName, DurationMs: time.Since(start).Milliseconds()})
		return result, nil
	}

	rawName := run.RawArtifactName(req.AgentName)
	e.emit(trace.Event{Kind: trace.KindJSONParseFailure, StageName: req.StageName, AgentName: req.AgentName, Message: "first parse failed"})
	if err := e.Store.SaveArtifactText(e.RunPath, rawName, text); err != nil {
		return zero, fmt.Errorf("persist raw output: %w", err)
	}
	e.emit(trace.Event{Kind: trace.KindRetryUsed, StageName: req.StageName, AgentName: req.AgentName})

	retryStart := time.Now()
	retryText, err := e.Gen.Generate(ctx, req.Instructions, fmt.Sprintf("%s\n\nOriginal response:\n%s", RetryPrompt, text))
	if err != nil {
		return zero, err
	}
	e.emit(trace.Event{Kind: trace.KindModelCall, StageName: req.StageName, AgentName: req.AgentName, DurationMs: time.Since(retryStart).Milliseconds()})

	if result, ok := parse(retryText); ok {
		e.emit(trace.Event{Kind: trace.KindStageEnd, StageName: req.StageName, AgentName: req.AgentName, DurationMs: time.Since(start).Milliseconds()})
		return result, nil
	}

	// The retry text overwrites the first failure at the same path.
	if err := e.Store.SaveArtifactText(e.RunPath, rawName, retryText); err != nil {
		return zero, fmt.Errorf("persist raw retry output: %w", err)
	}
	e.emit(trace.Event{Kind: trace.KindJSONParseFailure, StageName: req.StageName, AgentName: req.AgentName, Message: "retry parse failed"})

	return zero, &InvalidShapeError{AgentName: req.AgentName, ArtifactPath: rawName}
}
