package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// NotificationLog records every fire-and-forget dispatch attempt. Delivery
// failures never propagate to the triggering request, so this table is the
// only place they are visible.
type NotificationLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Recipient string             `gorm:"type:varchar(255);index" json:"recipient"`
	Subject   string             `gorm:"type:varchar(255)" json:"subject"`
	Channel   string             `gorm:"type:varchar(20);default:'email'" json:"channel"`
	Status    NotificationStatus `gorm:"type:varchar(20)" json:"status"`
	MessageID string             `gorm:"type:varchar(100)" json:"message_id,omitempty"`
	Error     string             `gorm:"type:text" json:"error,omitempty"`
}
