// Package model defines the JSON-shaped artifacts exchanged between
// pipeline stages and persisted under a run directory.
package model

// Question is a single clarifying question raised by the Clarifier or a
// specialist synthesizer. Blocking questions must be answered (or turned
// into assumptions) before the pipeline proceeds.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Blocking bool   `json:"blocking"`
}

// RequirementsSpec splits requirements into functional and non-functional.
type RequirementsSpec struct {
	Functional    []string `json:"functional"`
	NonFunctional []string `json:"non_functional"`
}

// ClarifiedSpecDraft is the Clarifier's draft of the problem statement.
// Fields are optional; the draft becomes a ClarifiedSpec once questions
// are resolved.
type ClarifiedSpecDraft struct {
	Title            string            `json:"title,omitempty"`
	ProblemStatement string            `json:"problem_statement,omitempty"`
	Goals            []string          `json:"goals,omitempty"`
	NonGoals         []string          `json:"non_goals,omitempty"`
	Assumptions      []string          `json:"assumptions,omitempty"`
	Constraints      []string          `json:"constraints,omitempty"`
	Requirements     *RequirementsSpec `json:"requirements,omitempty"`
	SuccessMetrics   []string          `json:"success_metrics,omitempty"`
	OpenQuestions    []Question        `json:"open_questions,omitempty"`
}

// ClarifierOutput is the Clarifier stage's artifact: questions plus a
// draft spec.
type ClarifierOutput struct {
	Questions          []Question          `json:"questions"`
	ClarifiedSpecDraft *ClarifiedSpecDraft `json:"clarified_spec_draft"`
}

// HasBlockingQuestions reports whether any question requires an answer
// before the pipeline may continue.
func (o *ClarifierOutput) HasBlockingQuestions() bool {
	for _, q := range o.Questions {
		if q.Blocking {
			return true
		}
	}
	return false
}

// BlockingQuestions returns the subset of questions marked blocking.
func (o *ClarifierOutput) BlockingQuestions() []Question {
	var out []Question
	for _, q := range o.Questions {
		if q.Blocking {
			out = append(out, q)
		}
	}
	return out
}

// ClarifiedSpec is the accepted problem statement. Built once from the
// Clarifier's draft plus any answers; immutable afterward.
type ClarifiedSpec struct {
	Title            string           `json:"title"`
	ProblemStatement string           `json:"problem_statement"`
	Goals            []string         `json:"goals"`
	NonGoals         []string         `json:"non_goals"`
	Assumptions      []string         `json:"assumptions"`
	Constraints      []string         `json:"constraints"`
	Requirements     RequirementsSpec `json:"requirements"`
	SuccessMetrics   []string         `json:"success_metrics"`
	OpenQuestions    []Question       `json:"open_questions"`
}

// ClarifiedSpecFromDraft builds the final spec from a draft and the
// user's answers. Open questions keep every non-blocking question plus
// any blocking question that received an answer.
func ClarifiedSpecFromDraft(draft *ClarifiedSpecDraft, answers map[string]string) ClarifiedSpec {
	spec := ClarifiedSpec{
		Title:            draft.Title,
		ProblemStatement: draft.ProblemStatement,
		Goals:            orEmpty(draft.Goals),
		NonGoals:         orEmpty(draft.NonGoals),
		Assumptions:      orEmpty(draft.Assumptions),
		Constraints:      orEmpty(draft.Constraints),
		Requirements:     RequirementsSpec{Functional: []string{}, NonFunctional: []string{}},
		SuccessMetrics:   orEmpty(draft.SuccessMetrics),
		OpenQuestions:    []Question{},
	}
	if draft.Requirements != nil {
		spec.Requirements = RequirementsSpec{
			Functional:    orEmpty(draft.Requirements.Functional),
			NonFunctional: orEmpty(draft.Requirements.NonFunctional),
		}
	}
	for _, q := range draft.OpenQuestions {
		if !q.Blocking {
			spec.OpenQuestions = append(spec.OpenQuestions, q)
			continue
		}
		if _, ok := answers[q.ID]; ok {
			spec.OpenQuestions = append(spec.OpenQuestions, q)
		}
	}
	return spec
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ComponentSpec names one component of an architecture and what it is
// responsible for.
type ComponentSpec struct {
	Name           string `json:"name"`
	Responsibility string `json:"responsibility"`
}

// ArchitectureSpec is the architecture section of a ProposedDesign.
type ArchitectureSpec struct {
	Components []ComponentSpec `json:"components"`
	DataFlow   string          `json:"data_flow"`
}

// APIContract describes one API surface of the design.
type APIContract struct {
	Name     string `json:"name"`
	Request  string `json:"request"`
	Response string `json:"response"`
}

// DataModelEntity describes one persisted entity.
type DataModelEntity struct {
	Entity string `json:"entity"`
	Fields string `json:"fields"`
}

// FailureMode pairs a failure scenario with its mitigation.
type FailureMode struct {
	Scenario   string `json:"scenario"`
	Mitigation string `json:"mitigation"`
}

// ObservabilitySpec lists the logs, metrics and traces the design emits.
type ObservabilitySpec struct {
	Logs    []string `json:"logs"`
	Metrics []string `json:"metrics"`
	Traces  []string `json:"traces"`
}

// SecuritySpec covers authn, authz and data handling.
type SecuritySpec struct {
	Authn        string `json:"authn"`
	Authz        string `json:"authz"`
	DataHandling string `json:"data_handling"`
}

// ProposedDesign is a design document keyed by seven independent
// sections, each nullable on its own. Specialists, variants and judges
// all produce, merge and consume this shape. Explicit per-field presence
// (pointers and nilable slices) keeps merge precedence statically
// checkable.
type ProposedDesign struct {
	Overview      *string            `json:"overview"`
	Architecture  *ArchitectureSpec  `json:"architecture"`
	APIContracts  []APIContract      `json:"api_contracts"`
	DataModel     []DataModelEntity  `json:"data_model"`
	FailureModes  []FailureMode      `json:"failure_modes"`
	Observability *ObservabilitySpec `json:"observability"`
	Security      *SecuritySpec      `json:"security"`
}

// SpecialistCoverage declares which section keys a specialist actually
// populated.
type SpecialistCoverage struct {
	Provides []string `json:"provides"`
	Notes    string   `json:"notes,omitempty"`
}

// SpecialistSynthOutput is one specialist's contribution to hybrid
// synthesis: the partial design it owns, the questions it raised, and a
// coverage declaration.
type SpecialistSynthOutput struct {
	Questions     []Question          `json:"questions"`
	PartialDesign *ProposedDesign     `json:"partial_design"`
	Coverage      *SpecialistCoverage `json:"coverage"`
}

// Conflict records a disagreement between specialists. Advisory data,
// not a correctness gate.
type Conflict struct {
	Area                string `json:"area"`
	Description         string `json:"description"`
	SuggestedResolution string `json:"suggested_resolution,omitempty"`
}

// MergerOutput is the result of combining multiple specialist outputs.
type MergerOutput struct {
	ProposedDesign  *ProposedDesign `json:"proposed_design"`
	MissingSections []string        `json:"missing_sections"`
	Conflicts       []Conflict      `json:"conflicts"`
	Questions       []Question      `json:"questions"`
}

// Risk is one identified risk in a critique.
type Risk struct {
	Description string `json:"risk"`
	Severity    string `json:"severity"`   // low|medium|high
	Likelihood  string `json:"likelihood"` // low|medium|high
	Mitigation  string `json:"mitigation"`
}

// Alternative is a design alternative raised by a critique.
type Alternative struct {
	Option string   `json:"option"`
	Pros   []string `json:"pros"`
	Cons   []string `json:"cons"`
}

// Critique is the Challenger stage's artifact.
type Critique struct {
	Risks                   []Risk        `json:"risks"`
	MissingRequirements     []string      `json:"missing_requirements"`
	QuestionableAssumptions []string      `json:"questionable_assumptions"`
	Alternatives            []Alternative `json:"alternatives"`
}

// OptimizedDesign is the Optimizer stage's artifact.
type OptimizedDesign struct {
	ChosenApproachSummary string   `json:"chosen_approach_summary"`
	ChangesFromOriginal   []string `json:"changes_from_original"`
	Tradeoffs             []string `json:"tradeoffs"`
	RolloutPlan           []string `json:"rollout_plan"`
	TestPlan              []string `json:"test_plan"`
	MigrationPlan         []string `json:"migration_plan"`
}

// Issue is one work item in the published package's breakdown.
type Issue struct {
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Labels             []string `json:"labels"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// PublishedPackage is the terminal artifact of a run.
type PublishedPackage struct {
	DesignDocMarkdown      string   `json:"design_doc_markdown"`
	Issues                 []Issue  `json:"issues"`
	PRPlan                 []string `json:"pr_plan"`
	RemainingOpenQuestions []string `json:"remaining_open_questions"`
	IncludedSections       []string `json:"included_sections,omitempty"`
}

// AssumptionRecord is one assumption generated when proceeding past an
// unanswered blocking question.
type AssumptionRecord struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	Assumption   string `json:"assumption"`
	Risk         string `json:"risk"`
}

// AssumptionBuilderOutput is the envelope the Assumption Builder stage
// returns.
type AssumptionBuilderOutput struct {
	Assumptions []AssumptionRecord `json:"assumptions"`
}

// SynthSelection is persisted under artifacts/synth/selection.json: the
// chosen specialist keys and the allow-assumptions flag, so a resumed
// pipeline runs with the same options it started with.
type SynthSelection struct {
	SynthSpecialists []string `json:"synthSpecialists"`
	AllowAssumptions bool     `json:"allowAssumptions"`
}

// RunInput is the caller's original request, persisted as input.json.
type RunInput struct {
	Title            string   `json:"title"`
	Prompt           string   `json:"prompt"`
	IncludedSections []string `json:"includedSections,omitempty"`
}
