package run

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/christophervuu/flow/internal/model"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	store := NewStore(t.TempDir())
	runPath, err := store.EnsureRunDir("run-1")
	if err != nil {
		t.Fatalf("EnsureRunDir: %v", err)
	}
	return store, runPath
}

func TestStateRoundTrip(t *testing.T) {
	store, runPath := newTestStore(t)

	if err := store.SaveState(runPath, NewState("run-1")); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	state, err := store.LoadState(runPath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.RunID != "run-1" || state.Status != StatusRunning {
		t.Errorf("loaded state = %+v", state)
	}
}

func TestLoadStateMissingRunIsNotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.LoadState(store.RunPath("no-such-run"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSetStatusEnforcesTransitions(t *testing.T) {
	store, runPath := newTestStore(t)
	if err := store.SaveState(runPath, NewState("run-1")); err != nil {
		t.Fatal(err)
	}

	if err := store.SetStatus(runPath, StatusCompleted); err != nil {
		t.Fatalf("Running -> Completed rejected: %v", err)
	}
	if err := store.SetStatus(runPath, StatusRunning); err == nil {
		t.Error("Completed -> Running accepted")
	}
	state, _ := store.LoadState(runPath)
	if state.Status != StatusCompleted {
		t.Errorf("status = %s after rejected transition, want Completed", state.Status)
	}
}

func TestArtifactPathSafety(t *testing.T) {
	store, runPath := newTestStore(t)

	bad := []string{"", "  ", "/etc/passwd", "../outside.json", "a/../../b.json"}
	for _, relative := range bad {
		if err := store.SaveArtifactText(runPath, relative, "x"); err == nil {
			t.Errorf("SaveArtifactText accepted %q", relative)
		}
	}

	if err := store.SaveArtifactText(runPath, "synth/specialists/ops.json", "{}"); err != nil {
		t.Errorf("nested artifact path rejected: %v", err)
	}
}

func TestArtifactJSONRoundTrip(t *testing.T) {
	store, runPath := newTestStore(t)

	in := model.Critique{
		Risks:                   []model.Risk{{Description: "single point of failure", Severity: "high", Likelihood: "medium", Mitigation: "replicate"}},
		MissingRequirements:     []string{"quota handling"},
		QuestionableAssumptions: []string{},
	}
	if err := store.SaveCritique(runPath, &in); err != nil {
		t.Fatalf("SaveCritique: %v", err)
	}
	if !store.HasArtifact(runPath, CritiqueArtifact) {
		t.Fatal("critique artifact not visible")
	}

	var out model.Critique
	if err := store.LoadArtifactJSON(runPath, CritiqueArtifact, &out); err != nil {
		t.Fatalf("LoadArtifactJSON: %v", err)
	}
	if !reflect.DeepEqual(out.Risks, in.Risks) {
		t.Errorf("risks round trip = %+v", out.Risks)
	}
}

func TestSavePublishedPackageWritesDesignDoc(t *testing.T) {
	store, runPath := newTestStore(t)

	pkg := &model.PublishedPackage{
		DesignDocMarkdown: "## Title\nRate limiter\n",
		IncludedSections:  []string{"title"},
		Issues:            []model.Issue{},
		PRPlan:            []string{},
	}
	if err := store.SavePublishedPackage(runPath, pkg); err != nil {
		t.Fatalf("SavePublishedPackage: %v", err)
	}

	doc, err := store.LoadDesignMarkdown(runPath)
	if err != nil {
		t.Fatalf("LoadDesignMarkdown: %v", err)
	}
	if !strings.Contains(doc, "Rate limiter") {
		t.Errorf("design doc = %q", doc)
	}
	if !store.HasArtifact(runPath, PublishedArtifact) {
		t.Error("published package artifact missing")
	}
}

func TestCompletedAgentsFollowsArtifacts(t *testing.T) {
	store, runPath := newTestStore(t)

	if got := store.CompletedAgents(runPath); len(got) != 0 {
		t.Fatalf("fresh run reports completed agents: %v", got)
	}

	if err := store.SaveClarifier(runPath, &model.ClarifierOutput{}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveProposedDesign(runPath, &model.ProposedDesign{}); err != nil {
		t.Fatal(err)
	}

	got := store.CompletedAgents(runPath)
	want := []string{"Clarifier", "Synthesizer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompletedAgents = %v, want %v", got, want)
	}
}

func TestListRunIDs(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, id := range []string{"b-run", "a-run"} {
		if _, err := store.EnsureRunDir(id); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := store.ListRunIDs()
	if err != nil {
		t.Fatalf("ListRunIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}
}
