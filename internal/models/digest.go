package models

import "time"

// DigestLog represents one generated daily marketing digest
type DigestLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReportDate time.Time `gorm:"uniqueIndex;not null" json:"report_date"`

	TotalSpend       float64 `json:"total_spend"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalLeads       int     `json:"total_leads"`
	WonLeads         int     `json:"won_leads"`
	TotalRevenue     float64 `json:"total_revenue"`

	TopChannels  string `gorm:"type:text" json:"top_channels"`  // JSON array of channel summaries
	TopCampaigns string `gorm:"type:text" json:"top_campaigns"` // JSON array of campaign summaries

	NotifiedAt  *time.Time `json:"notified_at"`
	NotifyError string     `gorm:"type:text" json:"notify_error"`

	CreatedAt time.Time `json:"created_at"`
}

func (DigestLog) TableName() string { return "digest_logs" }
