// Package section validates and normalizes the set of design-document
// sections a caller asked for. Section ids are a closed, ordered
// enumeration; each id maps 1:1 to an exact markdown heading the
// Publisher reproduces verbatim.
package section

import (
	"fmt"
	"strings"
)

// All valid section ids in canonical order.
var All = []string{
	"title",
	"problem_statement",
	"goals_non_goals",
	"requirements",
	"proposed_design",
	"api_contracts",
	"data_model",
	"failure_modes_mitigations",
	"observability",
	"security_privacy",
	"rollout_plan",
	"test_plan",
	"alternatives_considered",
	"open_questions",
	"work_breakdown",
}

// DefaultMinimal is the section set used when the caller supplies none.
var DefaultMinimal = []string{
	"title",
	"problem_statement",
	"goals_non_goals",
	"requirements",
	"proposed_design",
}

// Sections that only make sense inside a proposed design; selecting any
// of them pulls proposed_design in.
var proposedDesignDependents = map[string]bool{
	"api_contracts":             true,
	"data_model":                true,
	"failure_modes_mitigations": true,
	"observability":             true,
	"security_privacy":          true,
}

var headings = map[string]string{
	"title":                     "## Title",
	"problem_statement":         "## Problem Statement",
	"goals_non_goals":           "## Goals / Non-goals",
	"requirements":              "## Requirements (Functional / Non-functional)",
	"proposed_design":           "## Proposed Design (Overview, Components, Data Flow)",
	"api_contracts":             "## API Contracts",
	"data_model":                "## Data Model",
	"failure_modes_mitigations": "## Failure Modes & Mitigations",
	"observability":             "## Observability",
	"security_privacy":          "## Security & Privacy",
	"rollout_plan":              "## Rollout Plan",
	"test_plan":                 "## Test Plan",
	"alternatives_considered":   "## Alternatives Considered",
	"open_questions":            "## Open Questions",
	"work_breakdown":            "## Work Breakdown (Issues + PR plan)",
}

var canonicalIndex = func() map[string]int {
	m := make(map[string]int, len(All))
	for i, id := range All {
		m[id] = i
	}
	return m
}()

// InvalidError reports every unrecognized token at once, along with the
// full valid set.
type InvalidError struct {
	Invalid []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid section ids: %s (valid ids: %s)",
		strings.Join(e.Invalid, ", "), strings.Join(All, ", "))
}

// Normalize validates and normalizes raw section ids. A nil or empty
// input yields DefaultMinimal. Tokens are trimmed, lower-cased, and
// dashes are treated as underscores; blanks are dropped and duplicates
// collapsed. Any unrecognized token fails the whole call with an
// InvalidError naming all of them. If a dependent section is selected
// without proposed_design, proposed_design is added. The result is
// always in canonical order.
func Normalize(raw []string) ([]string, error) {
	if len(raw) == 0 {
		out := make([]string, len(DefaultMinimal))
		copy(out, DefaultMinimal)
		return out, nil
	}

	seen := make(map[string]bool)
	var normalized []string
	var invalid []string

	for _, token := range raw {
		id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(token)), "-", "_")
		if id == "" {
			continue
		}
		if _, ok := canonicalIndex[id]; !ok {
			invalid = append(invalid, token)
			continue
		}
		if !seen[id] {
			seen[id] = true
			normalized = append(normalized, id)
		}
	}

	if len(invalid) > 0 {
		return nil, &InvalidError{Invalid: invalid}
	}

	if !seen["proposed_design"] {
		for _, id := range normalized {
			if proposedDesignDependents[id] {
				normalized = append(normalized, "proposed_design")
				break
			}
		}
	}

	// Canonical order regardless of input order.
	var out []string
	inSet := make(map[string]bool, len(normalized))
	for _, id := range normalized {
		inSet[id] = true
	}
	for _, id := range All {
		if inSet[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// Heading returns the canonical markdown heading for a section id.
func Heading(id string) string {
	if h, ok := headings[id]; ok {
		return h
	}
	return "## " + id
}

// HeadingMapping builds the id-to-heading lines the Publisher prompt
// embeds so the model reproduces headings verbatim.
func HeadingMapping(ids []string) string {
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("- %s -> %s", id, Heading(id)))
	}
	return strings.Join(lines, "\n")
}

// Contains reports whether ids includes the given section id.
func Contains(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
