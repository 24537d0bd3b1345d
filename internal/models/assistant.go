package models

import (
	"time"

	"gorm.io/gorm"
)

// Message roles within a conversation
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation represents an AI assistant chat thread owned by a user,
// optionally linked to a patient.
type Conversation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	PatientID *uint          `gorm:"index" json:"patient_id"`
	Patient   *Patient       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Title     string         `gorm:"size:200" json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Messages []ConversationMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string { return "chat_conversations" }

// ConversationMessage is one turn in a conversation, ordered by
// created_at then id.
type ConversationMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Role           string    `gorm:"size:20;not null" json:"role"` // user, assistant
	Content        string    `gorm:"type:text" json:"content"`
	Provider       string    `gorm:"size:50" json:"provider,omitempty"`
	Model          string    `gorm:"size:100" json:"model,omitempty"`
	ErrorMessage   string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (ConversationMessage) TableName() string { return "chat_messages" }
