package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentEvent stores every webhook delivery we accepted, one row per
// processor event. The unique EventID dedupes redeliveries: a second
// delivery of the same event is acknowledged without reprocessing.
type PaymentEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Gateway           PaymentGateway  `gorm:"type:varchar(50);not null" json:"gateway"`
	EventID           string          `gorm:"type:varchar(100);uniqueIndex" json:"event_id"`
	EventType         string          `gorm:"type:varchar(100)" json:"event_type"`
	ExternalReference string          `gorm:"type:varchar(100);index" json:"external_reference"`
	Payload           json.RawMessage `gorm:"type:jsonb" json:"payload"`
}
