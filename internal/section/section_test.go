package section

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeEmptyInputUsesDefaults(t *testing.T) {
	for _, raw := range [][]string{nil, {}} {
		got, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%v) error: %v", raw, err)
		}
		if !reflect.DeepEqual(got, DefaultMinimal) {
			t.Errorf("Normalize(%v) = %v, want %v", raw, got, DefaultMinimal)
		}
	}
}

func TestNormalizeCleansTokens(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "trims and lowercases",
			raw:  []string{"  Title ", "REQUIREMENTS"},
			want: []string{"title", "requirements"},
		},
		{
			name: "dashes equal underscores",
			raw:  []string{"problem-statement", "goals-non-goals"},
			want: []string{"problem_statement", "goals_non_goals"},
		},
		{
			name: "drops blanks and duplicates",
			raw:  []string{"title", "", "  ", "title", "test_plan"},
			want: []string{"title", "test_plan"},
		},
		{
			name: "resorts into canonical order",
			raw:  []string{"work_breakdown", "title", "rollout_plan"},
			want: []string{"title", "rollout_plan", "work_breakdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%v) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeRejectsAllInvalidTokensAtOnce(t *testing.T) {
	_, err := Normalize([]string{"title", "bogus", "requirements", "nope"})
	if err == nil {
		t.Fatal("Normalize accepted invalid tokens")
	}

	var invalidErr *InvalidError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error type = %T, want *InvalidError", err)
	}
	if !reflect.DeepEqual(invalidErr.Invalid, []string{"bogus", "nope"}) {
		t.Errorf("Invalid = %v, want [bogus nope]", invalidErr.Invalid)
	}
	for _, id := range All {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error message missing valid id %q: %s", id, err)
		}
	}
}

func TestNormalizeDependencyRule(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "dependent pulls in proposed_design",
			raw:  []string{"data_model"},
			want: []string{"proposed_design", "data_model"},
		},
		{
			name: "all dependents add it once",
			raw:  []string{"security_privacy", "observability", "api_contracts"},
			want: []string{"proposed_design", "api_contracts", "observability", "security_privacy"},
		},
		{
			name: "already present is untouched",
			raw:  []string{"proposed_design", "failure_modes_mitigations"},
			want: []string{"proposed_design", "failure_modes_mitigations"},
		},
		{
			name: "independent sections do not",
			raw:  []string{"title", "open_questions"},
			want: []string{"title", "open_questions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%v) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsFixedPoint(t *testing.T) {
	inputs := [][]string{
		nil,
		{"data_model"},
		{"WORK-BREAKDOWN", "title", "observability"},
		All,
	}
	for _, raw := range inputs {
		once, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%v) error: %v", raw, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%v)) error: %v", raw, err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("normalize not a fixed point: %v then %v", once, twice)
		}
	}
}

func TestHeadingMapping(t *testing.T) {
	got := HeadingMapping([]string{"title", "data_model"})
	want := "- title -> ## Title\n- data_model -> ## Data Model"
	if got != want {
		t.Errorf("HeadingMapping = %q, want %q", got, want)
	}
}

func TestHeadingCoversAllIDs(t *testing.T) {
	for _, id := range All {
		h := Heading(id)
		if !strings.HasPrefix(h, "## ") || h == "## "+id {
			t.Errorf("Heading(%q) = %q, want a real heading", id, h)
		}
	}
}
