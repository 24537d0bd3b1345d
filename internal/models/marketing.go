package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead status values
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// Campaign represents a marketing campaign scoped to a CRM project.
type Campaign struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	UTMCampaign string         `gorm:"size:200;index" json:"utm_campaign"`
	Channel     string         `gorm:"size:100;index" json:"channel"` // google, meta, tiktok, email, ...
	Region      string         `gorm:"size:100" json:"region"`
	Country     string         `gorm:"size:100" json:"country"`
	Budget      float64        `gorm:"default:0" json:"budget"`
	Status      string         `gorm:"size:50;default:active" json:"status"` // active, paused, ended
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Campaign) TableName() string { return "marketing_campaigns" }

// ExpenseLog is one row of ad spend, keyed by date and channel. Clicks
// and impressions ride along for KPI math.
type ExpenseLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	CampaignID  *uint          `gorm:"index" json:"campaign_id"`
	Date        time.Time      `gorm:"index;not null" json:"date"`
	Channel     string         `gorm:"size:100;index" json:"channel"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Clicks      int64          `gorm:"default:0" json:"clicks"`
	Impressions int64          `gorm:"default:0" json:"impressions"`
	Region      string         `gorm:"size:100" json:"region"`
	Country     string         `gorm:"size:100" json:"country"`
	Notes       string         `gorm:"size:500" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ExpenseLog) TableName() string { return "marketing_expense_logs" }

// Lead is an inbound marketing lead. CampaignID is resolved once at
// insert time by the attribution heuristic; campaign edits never
// backfill it.
type Lead struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	CampaignID  *uint          `gorm:"index" json:"campaign_id"`
	Name        string         `gorm:"size:200" json:"name"`
	Email       string         `gorm:"size:255;index" json:"email"`
	Phone       string         `gorm:"size:50" json:"phone"`
	Channel     string         `gorm:"size:100;index" json:"channel"`
	UTMSource   string         `gorm:"size:200" json:"utm_source"`
	UTMMedium   string         `gorm:"size:200" json:"utm_medium"`
	UTMCampaign string         `gorm:"size:200" json:"utm_campaign"`
	GCLID       string         `gorm:"size:255" json:"gclid"`
	FBCLID      string         `gorm:"size:255" json:"fbclid"`
	Region      string         `gorm:"size:100" json:"region"`
	Country     string         `gorm:"size:100" json:"country"`
	Status      string         `gorm:"size:50;default:new;index" json:"status"` // new, contacted, qualified, won, lost
	Value       float64        `gorm:"default:0" json:"value"`
	ConvertedAt *time.Time     `json:"converted_at"` // Stamped when status becomes won
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lead) TableName() string { return "marketing_leads" }

// ImportJob tracks an expense CSV import, inline or queued.
type ImportJob struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"index;not null" json:"project_id"`
	FileName     string     `gorm:"size:255" json:"file_name"`
	Status       string     `gorm:"size:20;default:pending;index" json:"status"` // pending, running, completed, failed
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	SkippedRows  int        `json:"skipped_rows"`
	ErrorMessage string     `gorm:"size:500" json:"error_message,omitempty"`
	CreatedBy    uint       `json:"created_by"`
	StartedAt    *time.Time `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ImportJob) TableName() string { return "marketing_import_jobs" }
