package rut

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "plain body with correct check digit",
			input:    "12345678-5",
			expected: true,
		},
		{
			name:     "formatted with dots",
			input:    "12.345.678-5",
			expected: true,
		},
		{
			name:     "check digit off by one",
			input:    "12345678-6",
			expected: false,
		},
		{
			name:     "seven digit body",
			input:    "1234567-4",
			expected: true,
		},
		{
			name:     "K check digit",
			input:    "20347878-K",
			expected: true,
		},
		{
			name:     "lowercase k accepted",
			input:    "20347878-k",
			expected: true,
		},
		{
			name:     "body too short",
			input:    "123456-0",
			expected: false,
		},
		{
			name:     "body too long",
			input:    "123456789-2",
			expected: false,
		},
		{
			name:     "empty string",
			input:    "",
			expected: false,
		},
		{
			name:     "garbage input",
			input:    "not-a-rut",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.input); got != tt.expected {
				t.Errorf("Valid(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCheckDigitRoundTrip(t *testing.T) {
	bodies := []string{"12345678", "1234567", "20347878", "99999999", "7654321"}
	for _, body := range bodies {
		check, ok := CheckDigit(body)
		if !ok {
			t.Fatalf("CheckDigit(%q) unexpectedly failed", body)
		}
		full := body + "-" + string(check)
		if !Valid(full) {
			t.Errorf("Valid(%q) = false; want true", full)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("123455"); got != "123455" {
		t.Errorf("Format of invalid input should be unchanged, got %q", got)
	}
	if got := Format("12345678-5"); got != "12.345.678-5" {
		t.Errorf("Format(12345678-5) = %q; want 12.345.678-5", got)
	}
	if got := Format("1234567-4"); got != "1.234.567-4" {
		t.Errorf("Format(1234567-4) = %q; want 1.234.567-4", got)
	}
}
