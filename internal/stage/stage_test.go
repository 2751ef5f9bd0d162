package stage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/christophervuu/flow/internal/generate"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/trace"
)

type payload struct {
	Value string `json:"value"`
}

// scriptedGenerator returns canned responses in order and records the
// prompts it was called with.
type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i >= len(g.responses) {
		return "", errors.New("scripted generator exhausted")
	}
	return g.responses[i], nil
}

func newExecutor(t *testing.T, gen generate.Generator, sink trace.Sink) (*Executor, string) {
	t.Helper()
	store := run.NewStore(t.TempDir())
	runPath, err := store.EnsureRunDir("test-run")
	if err != nil {
		t.Fatalf("EnsureRunDir: %v", err)
	}
	return &Executor{Gen: gen, Store: store, RunPath: runPath, Sink: sink}, runPath
}

func collectKinds(events *[]trace.Event) trace.Sink {
	return func(evt trace.Event) {
		*events = append(*events, evt)
	}
}

func testRequest() Request {
	return Request{
		StageName:    "Synthesizer",
		AgentName:    "Synthesizer",
		Instructions: "produce JSON",
		Prompt:       "do the thing",
	}
}

func TestRunFirstResponseValid(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"value":"ok"}`}}
	var events []trace.Event
	e, _ := newExecutor(t, gen, collectKinds(&events))

	got, err := Run(context.Background(), e, testRequest(), DecodeJSON[payload]())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Value != "ok" {
		t.Errorf("Value = %q, want ok", got.Value)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("generator invoked %d times, want 1", len(gen.prompts))
	}
	assertKinds(t, events, []string{trace.KindStageStart, trace.KindModelCall, trace.KindStageEnd})
}

func TestRunInvalidTwiceFailsWithSecondTextPersisted(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"first garbage", "second garbage"}}
	e, runPath := newExecutor(t, gen, nil)

	_, err := Run(context.Background(), e, testRequest(), DecodeJSON[payload]())
	if !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("error = %v, want ErrInvalidShape", err)
	}

	var shapeErr *InvalidShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("error type = %T, want *InvalidShapeError", err)
	}
	if shapeErr.AgentName != "Synthesizer" {
		t.Errorf("AgentName = %q", shapeErr.AgentName)
	}

	if len(gen.prompts) != 2 {
		t.Errorf("generator invoked %d times, want exactly 2", len(gen.prompts))
	}

	raw, readErr := os.ReadFile(filepath.Join(run.ArtifactsDir(runPath), shapeErr.ArtifactPath))
	if readErr != nil {
		t.Fatalf("read raw artifact: %v", readErr)
	}
	if string(raw) != "second garbage" {
		t.Errorf("persisted raw = %q, want the retry text", raw)
	}
}

func TestRunFailThenSucceedEventOrder(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"not json", `{"value":"recovered"}`}}
	var events []trace.Event
	e, _ := newExecutor(t, gen, collectKinds(&events))

	got, err := Run(context.Background(), e, testRequest(), DecodeJSON[payload]())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Value != "recovered" {
		t.Errorf("Value = %q, want recovered", got.Value)
	}

	assertKinds(t, events, []string{
		trace.KindStageStart,
		trace.KindModelCall,
		trace.KindJSONParseFailure,
		trace.KindRetryUsed,
		trace.KindModelCall,
		trace.KindStageEnd,
	})
}

func TestRunRetryPromptCarriesOriginalResponse(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"not json at all", `{"value":"x"}`}}
	e, _ := newExecutor(t, gen, nil)

	if _, err := Run(context.Background(), e, testRequest(), DecodeJSON[payload]()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	retryPrompt := gen.prompts[1]
	if !strings.HasPrefix(retryPrompt, RetryPrompt) {
		t.Errorf("retry prompt does not lead with the corrective instruction: %q", retryPrompt)
	}
	if !strings.Contains(retryPrompt, "not json at all") {
		t.Errorf("retry prompt does not quote the original response: %q", retryPrompt)
	}
}

func TestRunTransportFailureIsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{generate.Unavailable(errors.New("rate limited"))}}
	var events []trace.Event
	e, _ := newExecutor(t, gen, collectKinds(&events))

	_, err := Run(context.Background(), e, testRequest(), DecodeJSON[payload]())
	if !errors.Is(err, generate.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("generator invoked %d times, want 1 (no transport retry)", len(gen.prompts))
	}
	assertKinds(t, events, []string{trace.KindStageStart})
}

func assertKinds(t *testing.T, events []trace.Event, want []string) {
	t.Helper()
	var got []string
	for _, evt := range events {
		got = append(got, evt.Kind)
	}
	if len(got) != len(want) {
		t.Fatalf("event kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", got, want)
		}
	}
}
