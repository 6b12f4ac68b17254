package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle of a consultation
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// Appointment is a booked consultation between a client and a lawyer.
// It is created only after a payment settles. The unique index on PaymentID
// is the idempotency guard: a confirm retried after a partial failure finds
// the existing row instead of inserting a second one.
type Appointment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ClientID uint `gorm:"index" json:"client_id"`
	LawyerID uint `gorm:"index" json:"lawyer_id"`

	ScheduledAt time.Time         `gorm:"index" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(20);default:'scheduled'" json:"status"`

	// Price is in minor units, copied from the settled payment.
	Price     int64  `json:"price"`
	PaymentID uint   `gorm:"uniqueIndex" json:"payment_id"`
	Subject   string `gorm:"type:varchar(255)" json:"subject"`

	MeetingLink string `gorm:"type:varchar(1024)" json:"meeting_link"`
	Notes       string `gorm:"type:text" json:"notes"`

	// Relationships
	Client  Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Lawyer  Profile `gorm:"foreignKey:LawyerID" json:"lawyer,omitempty"`
	Payment Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}
