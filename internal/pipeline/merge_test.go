package pipeline

import (
	"reflect"
	"testing"

	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/model"
)

func strPtr(s string) *string { return &s }

func archSpec(flow string) *model.ArchitectureSpec {
	return &model.ArchitectureSpec{
		Components: []model.ComponentSpec{{Name: "gateway", Responsibility: "routing"}},
		DataFlow:   flow,
	}
}

func specialistOut(d *model.ProposedDesign, questions ...model.Question) *model.SpecialistSynthOutput {
	return &model.SpecialistSynthOutput{PartialDesign: d, Questions: questions}
}

func TestMergeSpecialistsDisjointSections(t *testing.T) {
	outputs := map[agent.SpecialistKey]*model.SpecialistSynthOutput{
		agent.SpecRequirements: specialistOut(&model.ProposedDesign{Overview: strPtr("token bucket per key")}),
		agent.SpecArchitecture: specialistOut(&model.ProposedDesign{Architecture: archSpec("client -> gateway -> bucket store")}),
		agent.SpecSecurity:     specialistOut(&model.ProposedDesign{Security: &model.SecuritySpec{Authn: "mTLS"}}),
	}

	merged, conflicts := mergeSpecialists(outputs)

	if len(conflicts) != 0 {
		t.Errorf("disjoint merge produced conflicts: %v", conflicts)
	}
	if merged.Overview == nil || *merged.Overview != "token bucket per key" {
		t.Errorf("overview = %v", merged.Overview)
	}
	if merged.Architecture == nil || merged.Architecture.DataFlow != "client -> gateway -> bucket store" {
		t.Errorf("architecture = %+v", merged.Architecture)
	}
	if merged.Security == nil || merged.Security.Authn != "mTLS" {
		t.Errorf("security = %+v", merged.Security)
	}
}

func TestMergeSpecialistsOverlapKeepsHigherPrecedence(t *testing.T) {
	// architecture precedes contracts, so its architecture section wins
	// and the overlap is recorded, not raised.
	outputs := map[agent.SpecialistKey]*model.SpecialistSynthOutput{
		agent.SpecArchitecture: specialistOut(&model.ProposedDesign{Architecture: archSpec("from architecture specialist")}),
		agent.SpecContracts:    specialistOut(&model.ProposedDesign{Architecture: archSpec("from contracts specialist")}),
	}

	merged, conflicts := mergeSpecialists(outputs)

	if merged.Architecture.DataFlow != "from architecture specialist" {
		t.Errorf("architecture = %q, want the higher-precedence value", merged.Architecture.DataFlow)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want exactly one", conflicts)
	}
	if conflicts[0].Area != "architecture" {
		t.Errorf("conflict area = %q", conflicts[0].Area)
	}
}

func TestMergeSpecialistsEmptySectionsDoNotClaim(t *testing.T) {
	// requirements outranks ops, but its empty observability section
	// must not shadow the ops specialist's real one.
	outputs := map[agent.SpecialistKey]*model.SpecialistSynthOutput{
		agent.SpecRequirements: specialistOut(&model.ProposedDesign{Observability: &model.ObservabilitySpec{}}),
		agent.SpecOps:          specialistOut(&model.ProposedDesign{Observability: &model.ObservabilitySpec{Metrics: []string{"requests_total"}}}),
	}

	merged, conflicts := mergeSpecialists(outputs)

	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v", conflicts)
	}
	if merged.Observability == nil || len(merged.Observability.Metrics) != 1 {
		t.Errorf("observability = %+v, want the ops specialist's", merged.Observability)
	}
}

func TestMissingSections(t *testing.T) {
	d := &model.ProposedDesign{
		Overview:     strPtr("x"),
		Architecture: archSpec("flow"),
	}
	got := missingSections(d)
	want := []string{"api_contracts", "data_model", "failure_modes", "observability", "security"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("missingSections = %v, want %v", got, want)
	}

	if missing := missingSections(&model.ProposedDesign{}); len(missing) != len(SectionKeys) {
		t.Errorf("empty design missing %v", missing)
	}
}

func TestApplyFillOnlyFillsListedEmptyKeys(t *testing.T) {
	base := &model.ProposedDesign{Overview: strPtr("kept")}
	fill := &model.ProposedDesign{
		Overview:     strPtr("must not replace"),
		DataModel:    []model.DataModelEntity{{Entity: "bucket", Fields: "key, tokens, refilledAt"}},
		FailureModes: []model.FailureMode{{Scenario: "store down", Mitigation: "fail open"}},
	}

	// failure_modes is not in the requested keys, so it stays empty.
	applyFill(base, fill, []string{"overview", "data_model"})

	if *base.Overview != "kept" {
		t.Errorf("overview overwritten: %q", *base.Overview)
	}
	if len(base.DataModel) != 1 {
		t.Errorf("data_model not filled: %+v", base.DataModel)
	}
	if base.FailureModes != nil {
		t.Errorf("unrequested key filled: %+v", base.FailureModes)
	}
}
