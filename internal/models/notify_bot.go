package models

import (
	"time"

	"gorm.io/gorm"
)

// NotifyBot represents an outbound webhook notification target
type NotifyBot struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Type          string         `gorm:"size:50;not null" json:"type"` // slack, dingtalk, feishu, generic
	Webhook       string         `gorm:"size:500;not null" json:"webhook"`
	Secret        string         `gorm:"size:255" json:"-"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	ErrorNotify   bool           `gorm:"default:false" json:"error_notify"`   // Whether to receive error notifications
	DigestEnabled bool           `gorm:"default:false" json:"digest_enabled"` // Whether to receive the daily digest
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (NotifyBot) TableName() string { return "notify_bots" }
