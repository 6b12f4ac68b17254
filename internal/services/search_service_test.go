package services

import (
	"reflect"
	"testing"
)

func TestExpandSpecialtyTerms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single word",
			input:    "laboral",
			expected: []string{"laboral"},
		},
		{
			name:     "multi-word expands per word",
			input:    "Derecho Laboral",
			expected: []string{"derecho laboral", "derecho", "laboral"},
		},
		{
			name:     "short connector words skipped",
			input:    "derecho de familia",
			expected: []string{"derecho de familia", "derecho", "familia"},
		},
		{
			name:     "empty query",
			input:    "  ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandSpecialtyTerms(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExpandSpecialtyTerms(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatchesSpecialty(t *testing.T) {
	laboral := []string{"Derecho Laboral"}
	penal := []string{"Derecho Penal"}

	if !MatchesSpecialty(laboral, "laboral") {
		t.Error("expected 'laboral' to match [Derecho Laboral]")
	}
	if MatchesSpecialty(penal, "laboral") {
		t.Error("expected 'laboral' not to match [Derecho Penal]")
	}
	if !MatchesSpecialty(penal, "Derecho Penal") {
		t.Error("expected exact match on full specialty name")
	}
	if !MatchesSpecialty([]string{"Derecho de Familia"}, "familia") {
		t.Error("expected single word to match multi-word specialty")
	}
	if !MatchesSpecialty(penal, "") {
		t.Error("empty query should match everything")
	}
}
