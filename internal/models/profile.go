package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Role represents the role of a profile
type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

// Profile represents a user of the marketplace. Lawyers and clients share
// the same table; lawyer-only fields stay empty for clients.
type Profile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FirebaseUID string `gorm:"type:varchar(128);uniqueIndex" json:"firebase_uid"`
	Role        Role   `gorm:"type:varchar(20);default:'client'" json:"role"`

	FirstName string `gorm:"type:varchar(255)" json:"first_name"`
	LastName  string `gorm:"type:varchar(255)" json:"last_name"`
	Email     string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone     string `gorm:"type:varchar(50)" json:"phone"`
	RUT       string `gorm:"type:varchar(20)" json:"rut"`
	Bio       string `gorm:"type:text" json:"bio"`
	AvatarURL string `gorm:"type:varchar(1024)" json:"avatar_url"`
	Region    string `gorm:"type:varchar(100)" json:"region"`
	Comuna    string `gorm:"type:varchar(100)" json:"comuna"`

	Specialties   []string `gorm:"serializer:json" json:"specialties"`
	Languages     []string `gorm:"serializer:json" json:"languages"`
	Services      []string `gorm:"serializer:json" json:"services"`
	LicenseNumber string   `gorm:"type:varchar(50)" json:"license_number"`

	// HourlyRate is stored in minor units of the profile's currency.
	HourlyRate      int64   `json:"hourly_rate"`
	Rating          float64 `gorm:"type:decimal(3,2)" json:"rating"`
	ExperienceYears int     `json:"experience_years"`

	Verified           bool `gorm:"default:false" json:"verified"`
	ExternallyVerified bool `gorm:"default:false" json:"externally_verified"`
	AvailableNow       bool `gorm:"default:false" json:"available_now"`

	// Availability maps a weekday name ("monday"...) to 24 hour-slots.
	Availability map[string][]bool `gorm:"serializer:json" json:"availability"`

	StripeAccountID string `gorm:"type:varchar(100)" json:"stripe_account_id"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:ClientID" json:"appointments,omitempty"`
	Payments     []Payment     `gorm:"foreignKey:UserID" json:"payments,omitempty"`
}

// completionChecks is the fixed checklist behind the completion score.
// Order matters only for readability; the score is the satisfied count.
func (p Profile) completionChecks() []bool {
	return []bool{
		p.FirstName != "",
		p.LastName != "",
		p.Email != "",
		p.Phone != "",
		p.RUT != "",
		len(p.Bio) >= 100,
		p.HourlyRate > 0,
		len(p.Specialties) > 0,
		len(p.Languages) > 0,
		p.LicenseNumber != "",
		len(p.Services) > 0,
		p.AvatarURL != "",
		p.Region != "",
		p.ExperienceYears > 0,
		len(p.Availability) > 0,
	}
}

// CompletionScore returns the profile completion percentage, rounded to the
// nearest integer.
func (p Profile) CompletionScore() int {
	checks := p.completionChecks()
	satisfied := 0
	for _, ok := range checks {
		if ok {
			satisfied++
		}
	}
	return int(math.Round(100 * float64(satisfied) / float64(len(checks))))
}

// FullName joins the name fields for display and notifications.
func (p Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
