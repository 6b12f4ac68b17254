package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ErrorLog persists server-side failures for later inspection. Writing a row
// is best effort and never blocks the request that failed.
type ErrorLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Source   string          `gorm:"type:varchar(100);index" json:"source"`
	Message  string          `gorm:"type:text" json:"message"`
	Metadata json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
}
