package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status values
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project pipeline stages
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
	StageLost        = "lost"
)

// Project represents a CRM deal/engagement belonging to a company.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyID   uint           `gorm:"index;not null" json:"company_id"`
	Company     *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ContactID   *uint          `gorm:"index" json:"contact_id"` // Optional primary contact
	Contact     *Contact       `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:50;default:planning;index" json:"status"` // planning, active, on_hold, completed, cancelled
	Stage       string         `gorm:"size:50;default:lead;index" json:"stage"`      // lead, qualified, proposal, negotiation, won, lost
	Value       float64        `gorm:"default:0" json:"value"`
	Currency    string         `gorm:"size:10;default:USD" json:"currency"`
	StartDate   *time.Time     `json:"start_date"`
	DueDate     *time.Time     `json:"due_date"`
	OwnerID     uint           `gorm:"index" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// ValidProjectStage reports whether s is a known pipeline stage.
func ValidProjectStage(s string) bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation,
		StageWon, StageLost:
		return true
	}
	return false
}
