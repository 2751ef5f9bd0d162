package trace

import (
	"reflect"
	"testing"
)

func TestReconstructEmptyLog(t *testing.T) {
	plan := []string{"Clarifier", "Synthesizer", "Challenger", "Optimizer", "Publisher"}
	p := Reconstruct(nil, plan)

	if len(p.Completed) != 0 || len(p.Active) != 0 {
		t.Errorf("empty log produced progress: %+v", p)
	}
	if !reflect.DeepEqual(p.Pending, plan) {
		t.Errorf("Pending = %v, want full plan", p.Pending)
	}
}

func TestReconstructMidRun(t *testing.T) {
	plan := []string{"Clarifier", "Synthesizer", "Challenger", "Optimizer", "Publisher"}
	events := []Event{
		{Kind: KindStageStart, StageName: "Clarifier", AgentName: "Clarifier"},
		{Kind: KindModelCall, StageName: "Clarifier", AgentName: "Clarifier"},
		{Kind: KindStageEnd, StageName: "Clarifier", AgentName: "Clarifier"},
		{Kind: KindStageStart, StageName: "Synthesizer", AgentName: "Synthesizer"},
		{Kind: KindModelCall, StageName: "Synthesizer", AgentName: "Synthesizer"},
	}

	p := Reconstruct(events, plan)

	if !reflect.DeepEqual(p.Completed, []string{"Clarifier"}) {
		t.Errorf("Completed = %v", p.Completed)
	}
	if !reflect.DeepEqual(p.Active, []string{"Synthesizer"}) {
		t.Errorf("Active = %v", p.Active)
	}
	if !reflect.DeepEqual(p.Pending, []string{"Challenger", "Optimizer", "Publisher"}) {
		t.Errorf("Pending = %v", p.Pending)
	}
	if p.CurrentStage != "Synthesizer" {
		t.Errorf("CurrentStage = %q", p.CurrentStage)
	}
	if p.Current() != "Synthesizer" {
		t.Errorf("Current() = %q", p.Current())
	}
}

func TestReconstructTracksUnplannedAgents(t *testing.T) {
	// Variant agents are chosen at runtime and never appear in a
	// static plan; they must still show up as completed work.
	plan := []string{"Clarifier", "Synthesizer"}
	events := []Event{
		{Kind: KindStageStart, StageName: "Clarifier", AgentName: "Clarifier"},
		{Kind: KindStageEnd, StageName: "Clarifier", AgentName: "Clarifier"},
		{Kind: KindStageStart, StageName: "Synthesizer", AgentName: "Synthesizer_Variant1"},
		{Kind: KindStageEnd, StageName: "Synthesizer", AgentName: "Synthesizer_Variant1"},
		{Kind: KindStageStart, StageName: "Synthesizer", AgentName: "Synthesizer_Variant2"},
	}

	p := Reconstruct(events, plan)

	if !reflect.DeepEqual(p.Completed, []string{"Clarifier", "Synthesizer_Variant1"}) {
		t.Errorf("Completed = %v", p.Completed)
	}
	if !reflect.DeepEqual(p.Active, []string{"Synthesizer_Variant2"}) {
		t.Errorf("Active = %v", p.Active)
	}
	if !reflect.DeepEqual(p.Pending, []string{"Synthesizer"}) {
		t.Errorf("Pending = %v", p.Pending)
	}
}

func TestReconstructRetryDoesNotDuplicate(t *testing.T) {
	events := []Event{
		{Kind: KindStageStart, StageName: "Optimizer", AgentName: "Optimizer"},
		{Kind: KindModelCall, StageName: "Optimizer", AgentName: "Optimizer"},
		{Kind: KindJSONParseFailure, StageName: "Optimizer", AgentName: "Optimizer"},
		{Kind: KindRetryUsed, StageName: "Optimizer", AgentName: "Optimizer"},
		{Kind: KindModelCall, StageName: "Optimizer", AgentName: "Optimizer"},
		{Kind: KindStageEnd, StageName: "Optimizer", AgentName: "Optimizer"},
	}

	p := Reconstruct(events, []string{"Optimizer"})
	if !reflect.DeepEqual(p.Completed, []string{"Optimizer"}) {
		t.Errorf("Completed = %v", p.Completed)
	}
	if len(p.Active) != 0 || len(p.Pending) != 0 {
		t.Errorf("unexpected active/pending: %+v", p)
	}
}

func TestFromCompleted(t *testing.T) {
	plan := []string{"Clarifier", "Synthesizer", "Publisher"}
	p := FromCompleted([]string{"Clarifier"}, plan)

	if !reflect.DeepEqual(p.Completed, []string{"Clarifier"}) {
		t.Errorf("Completed = %v", p.Completed)
	}
	if !reflect.DeepEqual(p.Pending, []string{"Synthesizer", "Publisher"}) {
		t.Errorf("Pending = %v", p.Pending)
	}
}
