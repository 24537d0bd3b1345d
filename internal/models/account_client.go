package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountClient is a billing/accounting client profile.
type AccountClient struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CompanyName    string         `gorm:"size:200;not null;index" json:"company_name"`
	ContactPerson  string         `gorm:"size:200" json:"contact_person"`
	Email          string         `gorm:"size:255" json:"email"`
	Phone          string         `gorm:"size:50" json:"phone"`
	BillingAddress string         `gorm:"size:500" json:"billing_address"`
	TaxID          string         `gorm:"size:100" json:"tax_id"`
	Status         string         `gorm:"size:50;default:active" json:"status"` // active, inactive
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AccountClient) TableName() string { return "account_clients" }

// ClientDocument is uploaded file metadata for an account client. The
// file itself lives under the storage dir and is served by public URL.
type ClientDocument struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ClientID    uint           `gorm:"index;not null" json:"client_id"`
	FileName    string         `gorm:"size:255;not null" json:"file_name"`
	StoredName  string         `gorm:"size:255;not null" json:"stored_name"`
	PublicURL   string         `gorm:"size:500" json:"public_url"`
	ContentType string         `gorm:"size:100" json:"content_type"`
	Size        int64          `json:"size"`
	UploadedBy  uint           `json:"uploaded_by"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ClientDocument) TableName() string { return "account_documents" }

// AdhocRequirement is a one-off billable request from a client.
type AdhocRequirement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClientID  uint           `gorm:"index;not null" json:"client_id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Details   string         `gorm:"type:text" json:"details"`
	Status    string         `gorm:"size:50;default:pending" json:"status"` // pending, in_progress, delivered
	Fee       float64        `gorm:"default:0" json:"fee"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AdhocRequirement) TableName() string { return "account_adhoc_requirements" }

// StatementItem is one manually itemized line on a client's statement
// of account.
type StatementItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ClientID    uint           `gorm:"index;not null" json:"client_id"`
	Date        time.Time      `gorm:"index;not null" json:"date"`
	Description string         `gorm:"size:500;not null" json:"description"`
	Quantity    float64        `gorm:"default:1" json:"quantity"`
	UnitAmount  float64        `gorm:"default:0" json:"unit_amount"`
	Amount      float64        `gorm:"default:0" json:"amount"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StatementItem) TableName() string { return "account_statement_items" }
