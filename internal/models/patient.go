package models

import (
	"time"

	"gorm.io/gorm"
)

// Patient source values
const (
	PatientSourceIntakeForm = "intake_form"
	PatientSourceReferral   = "referral"
	PatientSourceWalkIn     = "walk_in"
	PatientSourceMarketing  = "marketing"
	PatientSourceOther      = "other"
)

// Patient represents a patient record, created by staff or through the
// public intake form.
type Patient struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FirstName   string         `gorm:"size:100;not null" json:"first_name"`
	LastName    string         `gorm:"size:100;not null" json:"last_name"`
	Email       string         `gorm:"size:255;index" json:"email"`
	Phone       string         `gorm:"size:50" json:"phone"`
	DateOfBirth *time.Time     `json:"date_of_birth"`
	Gender      string         `gorm:"size:20" json:"gender"`
	Address     string         `gorm:"size:500" json:"address"`
	Source      string         `gorm:"size:50;default:other;index" json:"source"` // intake_form, referral, walk_in, marketing, other
	Status      string         `gorm:"size:50;default:new" json:"status"`         // new, active, inactive
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Patient) TableName() string { return "patients" }
