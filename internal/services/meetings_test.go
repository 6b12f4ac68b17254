package services

import (
	"testing"
)

func TestNormalizeRoomName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain label",
			input:    "consulta-1042",
			expected: "consulta-1042",
		},
		{
			name:     "spaces become dashes",
			input:    "Consulta Derecho Laboral",
			expected: "consulta-derecho-laboral",
		},
		{
			name:     "repeated separators collapse",
			input:    "consulta  __  1042",
			expected: "consulta-1042",
		},
		{
			name:     "special characters dropped",
			input:    "Consulta #1042 (urgente)",
			expected: "consulta-1042-urgente",
		},
		{
			name:     "trailing separators trimmed",
			input:    "consulta-1042- ",
			expected: "consulta-1042",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeRoomName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeRoomName(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}
