// Package agent defines the persona/instruction sets bound to pipeline
// stages. Specialist keys and critique personas are closed
// enumerations: an unknown key is a construction-time error, not a
// runtime surprise.
package agent

import (
	"fmt"
	"strings"
)

// Canonical agent names, as they appear in trace events and raw-output
// artifact paths.
const (
	Clarifier         = "Clarifier"
	Synthesizer       = "Synthesizer"
	DesignJudge       = "DesignJudge"
	Challenger        = "Challenger"
	CritiqueJudge     = "CritiqueJudge"
	Optimizer         = "Optimizer"
	Publisher         = "Publisher"
	Merger            = "Merger"
	AssumptionBuilder = "AssumptionBuilder"
	SynthFill         = "Synthesizer_Fill"
)

// VariantAgentName names the i-th synthesis variant (1-based).
func VariantAgentName(i int) string {
	return fmt.Sprintf("Synthesizer_Variant%d", i)
}

// SpecialistKey identifies one specialist synthesizer.
type SpecialistKey string

const (
	SpecArchitecture SpecialistKey = "architecture"
	SpecContracts    SpecialistKey = "contracts"
	SpecRequirements SpecialistKey = "requirements"
	SpecOps          SpecialistKey = "ops"
	SpecSecurity     SpecialistKey = "security"
)

// AllSpecialists lists every specialist key.
var AllSpecialists = []SpecialistKey{
	SpecArchitecture, SpecContracts, SpecRequirements, SpecOps, SpecSecurity,
}

// MergePrecedence orders specialists for deterministic merging:
// requirements/overview first, then architecture, then contracts
// (api_contracts/data_model), then ops (failure_modes/observability),
// then security. A section set by an earlier specialist is never
// overwritten by a later one.
var MergePrecedence = []SpecialistKey{
	SpecRequirements, SpecArchitecture, SpecContracts, SpecOps, SpecSecurity,
}

// ParseSpecialists validates a caller-supplied specialist list.
func ParseSpecialists(keys []string) ([]SpecialistKey, error) {
	var out []SpecialistKey
	seen := make(map[SpecialistKey]bool)
	for _, raw := range keys {
		key := SpecialistKey(strings.ToLower(strings.TrimSpace(raw)))
		if key == "" {
			continue
		}
		if !knownSpecialist(key) {
			return nil, fmt.Errorf("unknown specialist key: %q (valid: %s)", raw, joinSpecialists())
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}

func knownSpecialist(key SpecialistKey) bool {
	for _, k := range AllSpecialists {
		if k == key {
			return true
		}
	}
	return false
}

func joinSpecialists() string {
	parts := make([]string, len(AllSpecialists))
	for i, k := range AllSpecialists {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// AgentName returns the trace/artifact agent name for a specialist.
func (k SpecialistKey) AgentName() string {
	return "Synth_" + string(k)
}

// Persona identifies one deep-critique perspective.
type Persona string

const (
	PersonaSecurity   Persona = "security"
	PersonaOperations Persona = "operations"
	PersonaCost       Persona = "cost"
	PersonaEdgeCases  Persona = "edgecases"
)

// Personas lists the deep-critique perspectives in their fixed
// execution order.
var Personas = []Persona{PersonaSecurity, PersonaOperations, PersonaCost, PersonaEdgeCases}

// AgentName returns the trace/artifact agent name for a persona.
func (p Persona) AgentName() string {
	return "Challenger_" + string(p)
}
