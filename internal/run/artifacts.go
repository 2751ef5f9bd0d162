package run

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/christophervuu/flow/internal/model"
)

// Well-known artifact names.
const (
	ClarifierArtifact     = "clarifier.json"
	ClarifiedSpecArtifact = "clarifiedSpec.json"
	ProposedArtifact      = "proposedDesign.json"
	CritiqueArtifact      = "critique.json"
	OptimizedArtifact     = "optimizedDesign.json"
	PublishedArtifact     = "publishedPackage.json"
	OptionsArtifact       = "options.json"
	SelectionArtifact     = "synth/selection.json"
	SynthQuestionsArtifact = "synth/questions.json"
	AssumptionsArtifact   = "synth/assumptions.json"
	MergedPartialArtifact = "synth/mergedPartial.json"
	DesignDoc             = "DESIGN.md"
)

// RawArtifactName returns the per-agent path raw generator output is
// persisted to when it fails shape validation.
func RawArtifactName(agentName string) string {
	return agentName + ".raw.txt"
}

// SpecialistArtifactName returns the artifact path for one specialist's
// output.
func SpecialistArtifactName(key string) string {
	return fmt.Sprintf("synth/specialists/%s.json", key)
}

func (s *Store) SaveClarifier(runPath string, out *model.ClarifierOutput) error {
	return s.SaveArtifactJSON(runPath, ClarifierArtifact, out)
}

func (s *Store) LoadClarifier(runPath string) (*model.ClarifierOutput, error) {
	var out model.ClarifierOutput
	if err := s.LoadArtifactJSON(runPath, ClarifierArtifact, &out); err != nil {
		return nil, fmt.Errorf("load clarifier output: %w", err)
	}
	return &out, nil
}

func (s *Store) SaveClarifiedSpec(runPath string, spec model.ClarifiedSpec) error {
	return s.SaveArtifactJSON(runPath, ClarifiedSpecArtifact, spec)
}

func (s *Store) LoadClarifiedSpec(runPath string) (model.ClarifiedSpec, error) {
	var spec model.ClarifiedSpec
	if err := s.LoadArtifactJSON(runPath, ClarifiedSpecArtifact, &spec); err != nil {
		return model.ClarifiedSpec{}, fmt.Errorf("load clarified spec: %w", err)
	}
	return spec, nil
}

func (s *Store) SaveProposedDesign(runPath string, d *model.ProposedDesign) error {
	return s.SaveArtifactJSON(runPath, ProposedArtifact, d)
}

func (s *Store) SaveCritique(runPath string, c *model.Critique) error {
	return s.SaveArtifactJSON(runPath, CritiqueArtifact, c)
}

func (s *Store) SaveOptimizedDesign(runPath string, d *model.OptimizedDesign) error {
	return s.SaveArtifactJSON(runPath, OptimizedArtifact, d)
}

// SavePublishedPackage persists the terminal artifact and writes the
// design markdown under published/.
func (s *Store) SavePublishedPackage(runPath string, p *model.PublishedPackage) error {
	if err := s.SaveArtifactJSON(runPath, PublishedArtifact, p); err != nil {
		return err
	}
	return s.SavePublishedText(runPath, DesignDoc, p.DesignDocMarkdown)
}

func (s *Store) LoadPublishedPackage(runPath string) (*model.PublishedPackage, error) {
	var p model.PublishedPackage
	if err := s.LoadArtifactJSON(runPath, PublishedArtifact, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveOptions persists the pipeline options a run was started with, so
// resume and status can reconstruct the stage plan.
func (s *Store) SaveOptions(runPath string, opts model.PipelineOptions) error {
	return s.SaveArtifactJSON(runPath, OptionsArtifact, opts)
}

// LoadOptions returns the zero options when none were persisted.
func (s *Store) LoadOptions(runPath string) (model.PipelineOptions, error) {
	if !s.HasArtifact(runPath, OptionsArtifact) {
		return model.PipelineOptions{}, nil
	}
	var opts model.PipelineOptions
	if err := s.LoadArtifactJSON(runPath, OptionsArtifact, &opts); err != nil {
		return model.PipelineOptions{}, fmt.Errorf("load pipeline options: %w", err)
	}
	return opts, nil
}

func (s *Store) SaveSynthSelection(runPath string, sel model.SynthSelection) error {
	return s.SaveArtifactJSON(runPath, SelectionArtifact, sel)
}

// LoadSynthSelection returns nil when no selection was persisted.
func (s *Store) LoadSynthSelection(runPath string) (*model.SynthSelection, error) {
	if !s.HasArtifact(runPath, SelectionArtifact) {
		return nil, nil
	}
	var sel model.SynthSelection
	if err := s.LoadArtifactJSON(runPath, SelectionArtifact, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (s *Store) SaveSynthQuestions(runPath string, questions []model.Question) error {
	return s.SaveArtifactJSON(runPath, SynthQuestionsArtifact, questions)
}

// LoadSynthQuestions returns nil when specialist synthesis never raised
// questions.
func (s *Store) LoadSynthQuestions(runPath string) ([]model.Question, error) {
	if !s.HasArtifact(runPath, SynthQuestionsArtifact) {
		return nil, nil
	}
	var questions []model.Question
	if err := s.LoadArtifactJSON(runPath, SynthQuestionsArtifact, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) SaveSynthAssumptions(runPath string, assumptions []model.AssumptionRecord) error {
	return s.SaveArtifactJSON(runPath, AssumptionsArtifact, assumptions)
}

// DesignMarkdownPath returns the published DESIGN.md path, or "" when
// the run has not published yet.
func (s *Store) DesignMarkdownPath(runPath string) string {
	path := filepath.Join(PublishedDir(runPath), DesignDoc)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// LoadDesignMarkdown reads the published design document.
func (s *Store) LoadDesignMarkdown(runPath string) (string, error) {
	path := s.DesignMarkdownPath(runPath)
	if path == "" {
		return "", fmt.Errorf("run not finished; no design doc available")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CompletedAgents infers which agents finished from which artifacts
// exist. Used for status reconstruction when a run was executed without
// tracing.
func (s *Store) CompletedAgents(runPath string) []string {
	checks := []struct {
		artifact string
		agent    string
	}{
		{ClarifierArtifact, "Clarifier"},
		{ProposedArtifact, "Synthesizer"},
		{CritiqueArtifact, "Challenger"},
		{OptimizedArtifact, "Optimizer"},
		{PublishedArtifact, "Publisher"},
	}
	var agents []string
	for _, c := range checks {
		if s.HasArtifact(runPath, c.artifact) {
			agents = append(agents, c.agent)
		}
	}
	return agents
}
