package models

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a CRM company record. A company owns contacts and
// projects 1:N.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null;index" json:"name"`
	Industry  string         `gorm:"size:100" json:"industry"`
	Website   string         `gorm:"size:500" json:"website"`
	Email     string         `gorm:"size:255" json:"email"`
	Phone     string         `gorm:"size:50" json:"phone"`
	Address   string         `gorm:"size:500" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	Country   string         `gorm:"size:100" json:"country"`
	LinkedIn  string         `gorm:"size:500" json:"linkedin"`
	Facebook  string         `gorm:"size:500" json:"facebook"`
	Twitter   string         `gorm:"size:500" json:"twitter"`
	LogoURL   string         `gorm:"size:500" json:"logo_url"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Contacts []Contact `gorm:"foreignKey:CompanyID" json:"contacts,omitempty"`
	Projects []Project `gorm:"foreignKey:CompanyID" json:"projects,omitempty"`
}

func (Company) TableName() string { return "companies" }
