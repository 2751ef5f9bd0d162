package pipeline

import (
	"fmt"

	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/model"
)

// SectionKeys are the seven independent sections of a ProposedDesign.
var SectionKeys = []string{
	"overview",
	"architecture",
	"api_contracts",
	"data_model",
	"failure_modes",
	"observability",
	"security",
}

// hasSection reports whether the design carries real content for a
// section key. Empty strings, empty slices and zero-valued structs do
// not count: a specialist "providing" an empty section must not shadow
// another's content.
func hasSection(d *model.ProposedDesign, key string) bool {
	if d == nil {
		return false
	}
	switch key {
	case "overview":
		return d.Overview != nil && *d.Overview != ""
	case "architecture":
		return d.Architecture != nil && (len(d.Architecture.Components) > 0 || d.Architecture.DataFlow != "")
	case "api_contracts":
		return len(d.APIContracts) > 0
	case "data_model":
		return len(d.DataModel) > 0
	case "failure_modes":
		return len(d.FailureModes) > 0
	case "observability":
		return d.Observability != nil && (len(d.Observability.Logs) > 0 || len(d.Observability.Metrics) > 0 || len(d.Observability.Traces) > 0)
	case "security":
		return d.Security != nil && (d.Security.Authn != "" || d.Security.Authz != "" || d.Security.DataHandling != "")
	}
	return false
}

// copySection copies one section value from src into dst.
func copySection(dst, src *model.ProposedDesign, key string) {
	switch key {
	case "overview":
		dst.Overview = src.Overview
	case "architecture":
		dst.Architecture = src.Architecture
	case "api_contracts":
		dst.APIContracts = src.APIContracts
	case "data_model":
		dst.DataModel = src.DataModel
	case "failure_modes":
		dst.FailureModes = src.FailureModes
	case "observability":
		dst.Observability = src.Observability
	case "security":
		dst.Security = src.Security
	}
}

// missingSections returns the section keys a design still leaves empty.
func missingSections(d *model.ProposedDesign) []string {
	var missing []string
	for _, key := range SectionKeys {
		if !hasSection(d, key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// mergeSpecialists deterministically combines specialist partial
// designs in precedence order. A section set by a higher-precedence
// specialist is never overwritten by a lower-precedence one; overlaps
// are recorded as conflicts, never raised as errors.
func mergeSpecialists(outputs map[agent.SpecialistKey]*model.SpecialistSynthOutput) (*model.ProposedDesign, []model.Conflict) {
	merged := &model.ProposedDesign{}
	owner := make(map[string]agent.SpecialistKey)
	var conflicts []model.Conflict

	for _, key := range agent.MergePrecedence {
		out, ok := outputs[key]
		if !ok || out == nil || out.PartialDesign == nil {
			continue
		}
		for _, sectionKey := range SectionKeys {
			if !hasSection(out.PartialDesign, sectionKey) {
				continue
			}
			if hasSection(merged, sectionKey) {
				conflicts = append(conflicts, model.Conflict{
					Area: sectionKey,
					Description: fmt.Sprintf("specialists %s and %s both populated %s; kept %s by precedence",
						owner[sectionKey].AgentName(), key.AgentName(), sectionKey, owner[sectionKey].AgentName()),
				})
				continue
			}
			copySection(merged, out.PartialDesign, sectionKey)
			owner[sectionKey] = key
		}
	}
	return merged, conflicts
}

// applyFill merges a fill stage's output into base for exactly the
// listed keys, and only where base is still empty. Keys the specialist
// merge already populated are never replaced, even if the fill stage
// returned a value for them.
func applyFill(base, fill *model.ProposedDesign, keys []string) {
	for _, key := range keys {
		if hasSection(base, key) {
			continue
		}
		if hasSection(fill, key) {
			copySection(base, fill, key)
		}
	}
}
