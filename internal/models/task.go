package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusCancelled  = "cancelled"
)

// Task priority values
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// Task represents a staff work item, optionally linked to a patient or
// a CRM project. AcknowledgedAt is a read receipt stamped once by the
// assignee.
type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	PatientID      *uint          `gorm:"index" json:"patient_id"`
	Patient        *Patient       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	ProjectID      *uint          `gorm:"index" json:"project_id"`
	Project        *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Status         string         `gorm:"size:50;default:todo;index" json:"status"`    // todo, in_progress, done, cancelled
	Priority       string         `gorm:"size:20;default:medium" json:"priority"`      // low, medium, high, urgent
	Type           string         `gorm:"size:50;default:other" json:"type"`           // call, follow_up, intake_review, meeting, admin, other
	AssigneeID     *uint          `gorm:"index" json:"assignee_id"`
	Assignee       *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	DueDate        *time.Time     `json:"due_date"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at"` // First acknowledge wins
	CreatedBy      uint           `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }
