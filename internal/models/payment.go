package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayStripe      PaymentGateway = "stripe"
	PaymentGatewayMercadoPago PaymentGateway = "mercadopago"
)

// PaymentStatus is the lifecycle state of a payment. Transitions only move
// forward: created -> pending -> {succeeded | failed}.
type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

var paymentStatusRank = map[PaymentStatus]int{
	PaymentStatusCreated:   0,
	PaymentStatusPending:   1,
	PaymentStatusSucceeded: 2,
	PaymentStatusFailed:    2,
}

// CanTransition reports whether moving from one status to another is a
// forward transition. Terminal states absorb everything, so a late "pending"
// webhook never regresses a settled payment.
func CanTransition(from, to PaymentStatus) bool {
	fromRank, ok := paymentStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := paymentStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// Payment is the audit record of a checkout attempt. Rows are never deleted;
// the webhook receiver and the booking confirm path both write to it, guarded
// by CanTransition and the unique appointment linkage.
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   uint `gorm:"index" json:"user_id"`
	LawyerID uint `gorm:"index" json:"lawyer_id"`

	// Amount is in minor units of Currency. CLP has no minor units, so the
	// amount equals the peso value.
	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"type:varchar(10);not null" json:"currency"`

	Status  PaymentStatus  `gorm:"type:varchar(20);default:'created'" json:"status"`
	Gateway PaymentGateway `gorm:"type:varchar(50);not null" json:"gateway"`

	// ExternalReference is chosen by us and echoed back by the processor.
	ExternalReference string `gorm:"type:varchar(100);uniqueIndex" json:"external_reference"`
	// ProcessorID is the processor-side intent / preference / payment id.
	ProcessorID string `gorm:"type:varchar(100);index" json:"processor_id"`

	AppointmentID *uint           `gorm:"index" json:"appointment_id,omitempty"`
	Metadata      json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// Terminal reports whether the payment has settled one way or the other.
func (p Payment) Terminal() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusFailed
}
