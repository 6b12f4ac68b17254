package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount holds the payout destination a lawyer registered. One account
// per profile; saving again replaces the previous one.
type BankAccount struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProfileID uint `gorm:"uniqueIndex" json:"profile_id"`

	BankName      string `gorm:"type:varchar(100)" json:"bank_name"`
	AccountType   string `gorm:"type:varchar(50)" json:"account_type"`
	AccountNumber string `gorm:"type:varchar(50)" json:"account_number"`
	HolderName    string `gorm:"type:varchar(255)" json:"holder_name"`
	HolderRUT     string `gorm:"type:varchar(20)" json:"holder_rut"`

	// Relationships
	Profile Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}
