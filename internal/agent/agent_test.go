package agent

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseSpecialists(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []SpecialistKey
		wantErr bool
	}{
		{
			name: "valid keys",
			in:   []string{"architecture", "security"},
			want: []SpecialistKey{SpecArchitecture, SpecSecurity},
		},
		{
			name: "trims, lowercases and dedupes",
			in:   []string{" OPS ", "ops", "", "Requirements"},
			want: []SpecialistKey{SpecOps, SpecRequirements},
		},
		{
			name:    "unknown key rejected",
			in:      []string{"architecture", "frontend"},
			wantErr: true,
		},
		{
			name: "empty list yields nothing",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpecialists(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "frontend") {
					t.Errorf("error does not name the bad key: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecialists(%v): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpecialists(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergePrecedenceOrder(t *testing.T) {
	want := []SpecialistKey{SpecRequirements, SpecArchitecture, SpecContracts, SpecOps, SpecSecurity}
	if !reflect.DeepEqual(MergePrecedence, want) {
		t.Errorf("MergePrecedence = %v, want %v", MergePrecedence, want)
	}
}

func TestAgentNames(t *testing.T) {
	if got := SpecArchitecture.AgentName(); got != "Synth_architecture" {
		t.Errorf("specialist agent name = %q", got)
	}
	if got := PersonaEdgeCases.AgentName(); got != "Challenger_edgecases" {
		t.Errorf("persona agent name = %q", got)
	}
	if got := VariantAgentName(3); got != "Synthesizer_Variant3" {
		t.Errorf("variant agent name = %q", got)
	}
}

func TestPersonaOrderIsFixed(t *testing.T) {
	want := []Persona{PersonaSecurity, PersonaOperations, PersonaCost, PersonaEdgeCases}
	if !reflect.DeepEqual(Personas, want) {
		t.Errorf("Personas = %v, want %v", Personas, want)
	}
}
