package currency

import "testing"

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		minor    int64
		code     string
		expected string
	}{
		{
			name:     "CLP uses thousand separators and no decimals",
			minor:    10000,
			code:     "CLP",
			expected: "$10.000",
		},
		{
			name:     "CLP large amount",
			minor:    1500000,
			code:     "CLP",
			expected: "$1.500.000",
		},
		{
			name:     "USD divides by 100 with two decimals",
			minor:    1050,
			code:     "USD",
			expected: "$10.50",
		},
		{
			name:     "USD whole amount keeps decimals",
			minor:    20000,
			code:     "USD",
			expected: "$200.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.minor, tt.code); got != tt.expected {
				t.Errorf("Display(%d, %s) = %q; want %q", tt.minor, tt.code, got, tt.expected)
			}
		})
	}
}

func TestMinorUnitRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 1050, 999999} {
		if got := ToMinorUnits(FromMinorUnits(minor)); got != minor {
			t.Errorf("round trip of %d produced %d", minor, got)
		}
	}
}

func TestToMinorUnitsRounding(t *testing.T) {
	if got := ToMinorUnits(10.506); got != 1051 {
		t.Errorf("ToMinorUnits(10.506) = %d; want 1051", got)
	}
	if got := ToMinorUnits(10.504); got != 1050 {
		t.Errorf("ToMinorUnits(10.504) = %d; want 1050", got)
	}
}
