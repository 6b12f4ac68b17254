package services

import (
	"testing"

	"lexmarket_echo/internal/models"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{50000, 10000},
		{10000, 2000},
		{1, 0},
		{99, 19},
		{0, 0},
	}
	for _, tt := range tests {
		if got := PlatformFee(tt.amount); got != tt.want {
			t.Errorf("PlatformFee(%d) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestPlatformFeeSplitAddsUp(t *testing.T) {
	amount := int64(50000)
	fee := PlatformFee(amount)
	lawyerShare := amount - fee
	if fee+lawyerShare != amount {
		t.Errorf("fee %d + lawyer share %d != amount %d", fee, lawyerShare, amount)
	}
}

func TestStagingKey(t *testing.T) {
	got := StagingKey("abc-123")
	want := "booking:staging:abc-123"
	if got != want {
		t.Errorf("StagingKey(abc-123) = %q, want %q", got, want)
	}
}

func TestStatusFromProcessor(t *testing.T) {
	tests := []struct {
		status string
		want   models.PaymentStatus
	}{
		{"approved", models.PaymentStatusSucceeded},
		{"authorized", models.PaymentStatusSucceeded},
		{"rejected", models.PaymentStatusFailed},
		{"cancelled", models.PaymentStatusFailed},
		{"refunded", models.PaymentStatusFailed},
		{"charged_back", models.PaymentStatusFailed},
		{"in_process", models.PaymentStatusPending},
		{"pending", models.PaymentStatusPending},
		{"", models.PaymentStatusPending},
	}
	for _, tt := range tests {
		if got := StatusFromProcessor(tt.status); got != tt.want {
			t.Errorf("StatusFromProcessor(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
