package models

import (
	"time"

	"gorm.io/gorm"
)

// PayoutLog records a batch payout to lawyers. Rows are written by the
// external payout process; this codebase only reads them.
type PayoutLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Status      string `gorm:"type:varchar(50)" json:"status"`
	TotalAmount int64  `json:"total_amount"`
	PaymentIDs  []uint `gorm:"serializer:json" json:"payment_ids"`
	Error       string `gorm:"type:text" json:"error,omitempty"`
}
