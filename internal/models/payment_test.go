package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     PaymentStatus
		to       PaymentStatus
		expected bool
	}{
		{"created to pending", PaymentStatusCreated, PaymentStatusPending, true},
		{"created to succeeded", PaymentStatusCreated, PaymentStatusSucceeded, true},
		{"pending to succeeded", PaymentStatusPending, PaymentStatusSucceeded, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"late pending after succeeded", PaymentStatusSucceeded, PaymentStatusPending, false},
		{"late pending after failed", PaymentStatusFailed, PaymentStatusPending, false},
		{"succeeded to failed", PaymentStatusSucceeded, PaymentStatusFailed, false},
		{"failed to succeeded", PaymentStatusFailed, PaymentStatusSucceeded, false},
		{"pending to created", PaymentStatusPending, PaymentStatusCreated, false},
		{"same status", PaymentStatusPending, PaymentStatusPending, false},
		{"unknown from", PaymentStatus("bogus"), PaymentStatusSucceeded, false},
		{"unknown to", PaymentStatusCreated, PaymentStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if (Payment{Status: PaymentStatusPending}).Terminal() {
		t.Error("pending should not be terminal")
	}
	if !(Payment{Status: PaymentStatusSucceeded}).Terminal() {
		t.Error("succeeded should be terminal")
	}
	if !(Payment{Status: PaymentStatusFailed}).Terminal() {
		t.Error("failed should be terminal")
	}
}
