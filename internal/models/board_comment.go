package models

import (
	"time"

	"gorm.io/gorm"
)

// BoardComment is a comment on a Danote board. ParentID gives one level
// of threading; replies to replies attach to the top-level comment.
type BoardComment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BoardID   uint           `gorm:"index;not null" json:"board_id"`
	AuthorID  uint           `gorm:"index;not null" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID  *uint          `gorm:"index" json:"parent_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BoardComment) TableName() string { return "danote_comments" }

// Mention records that a comment mentioned a user by full name.
type Mention struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CommentID       uint      `gorm:"index;not null" json:"comment_id"`
	BoardID         uint      `gorm:"index;not null" json:"board_id"`
	MentionedUserID uint      `gorm:"index;not null" json:"mentioned_user_id"`
	MentionedByID   uint      `gorm:"not null" json:"mentioned_by_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Mention) TableName() string { return "danote_mentions" }

// Notification types
const (
	NotificationMention      = "mention"
	NotificationTaskAssigned = "task_assigned"
	NotificationLeadCreated  = "lead_created"
	NotificationSystem       = "system"
)

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`
	Type        string    `gorm:"size:50;not null" json:"type"` // mention, task_assigned, lead_created, system
	Title       string    `gorm:"size:200" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	RefType     string    `gorm:"size:50" json:"ref_type"` // board, comment, task, lead
	RefID       *uint     `json:"ref_id"`
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "danote_notifications" }
