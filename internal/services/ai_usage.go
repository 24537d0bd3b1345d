package services

import (
	"time"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
	"gorm.io/gorm"
)

// AIUsageService aggregates the per-call logs written by the assistant
// into the stats the admin usage page shows.
type AIUsageService struct {
	db *gorm.DB
}

func NewAIUsageService(db *gorm.DB) *AIUsageService {
	return &AIUsageService{db: db}
}

// Record saves a usage log entry off the request goroutine, a chat
// reply should never wait on bookkeeping.
func (s *AIUsageService) Record(log *models.AIUsageLog) {
	go func() {
		if err := s.db.Create(log).Error; err != nil {
			logger.Warnf("[AIUsage] Failed to record usage: %v", err)
		}
	}()
}

// usageWindow narrows a query to the requested date range. The column
// is qualified by callers that join other tables.
func usageWindow(query *gorm.DB, column, startDate, endDate string) *gorm.DB {
	if startDate != "" {
		query = query.Where(column+" >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where(column+" <= ?", endDate+" 23:59:59")
	}
	return query
}

// UsageStats holds aggregated AI usage statistics.
type UsageStats struct {
	TotalCalls       int64   `json:"total_calls"`
	TotalTokens      int64   `json:"total_tokens"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	SuccessRate      float64 `json:"success_rate"`
	SuccessCount     int64   `json:"success_count"`
	FailureCount     int64   `json:"failure_count"`
}

// GetStats returns aggregated usage statistics for the given time range.
func (s *AIUsageService) GetStats(startDate, endDate string, conversationID *uint) (*UsageStats, error) {
	query := usageWindow(s.db.Model(&models.AIUsageLog{}), "created_at", startDate, endDate)
	if conversationID != nil && *conversationID > 0 {
		query = query.Where("conversation_id = ?", *conversationID)
	}

	var stats UsageStats
	err := query.Select(
		"COUNT(*) as total_calls, " +
			"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
			"COALESCE(SUM(prompt_tokens), 0) as prompt_tokens, " +
			"COALESCE(SUM(completion_tokens), 0) as completion_tokens, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count, " +
			"COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count",
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalCalls) * 100
	}
	return &stats, nil
}

// DailyUsage holds usage data for a single day.
type DailyUsage struct {
	Date         string `json:"date"`
	Calls        int    `json:"calls"`
	TotalTokens  int    `json:"total_tokens"`
	AvgLatencyMs int    `json:"avg_latency_ms"`
}

// GetDailyTrend returns daily aggregated usage for charting.
func (s *AIUsageService) GetDailyTrend(startDate, endDate string, conversationID *uint) ([]DailyUsage, error) {
	query := usageWindow(s.db.Model(&models.AIUsageLog{}), "created_at", startDate, endDate)
	if conversationID != nil && *conversationID > 0 {
		query = query.Where("conversation_id = ?", *conversationID)
	}

	var results []DailyUsage
	err := query.Select(
		"DATE(created_at) as date, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms",
	).Group("DATE(created_at)").Order("date ASC").Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []DailyUsage{}
	}
	return results, nil
}

// ProviderUsage holds usage data grouped by provider.
type ProviderUsage struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Calls        int     `json:"calls"`
	TotalTokens  int     `json:"total_tokens"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	SuccessRate  float64 `json:"success_rate"`
}

// GetProviderBreakdown returns usage grouped by provider and model.
func (s *AIUsageService) GetProviderBreakdown(startDate, endDate string) ([]ProviderUsage, error) {
	query := usageWindow(s.db.Model(&models.AIUsageLog{}), "created_at", startDate, endDate)

	var results []ProviderUsage
	err := query.Select(
		"provider, model, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(total_tokens), 0) as total_tokens, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(AVG(CASE WHEN success = 1 THEN 100.0 ELSE 0.0 END), 0) as success_rate",
	).Group("provider, model").Order("calls DESC").Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []ProviderUsage{}
	}
	return results, nil
}

// ConversationUsage ranks a conversation by its token spend.
type ConversationUsage struct {
	ConversationID uint    `json:"conversation_id"`
	Title          string  `json:"title"`
	Calls          int     `json:"calls"`
	TotalTokens    int     `json:"total_tokens"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

// GetTopConversations returns the conversations that burned the most
// tokens in the range. Deleted conversations stay in the ranking with
// an empty title, their spend already happened.
func (s *AIUsageService) GetTopConversations(startDate, endDate string, limit int) ([]ConversationUsage, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := usageWindow(s.db.Model(&models.AIUsageLog{}), "ai_usage_logs.created_at", startDate, endDate)

	var results []ConversationUsage
	err := query.Select(
		"ai_usage_logs.conversation_id as conversation_id, "+
			"COALESCE(chat_conversations.title, '') as title, "+
			"COUNT(*) as calls, "+
			"COALESCE(SUM(ai_usage_logs.total_tokens), 0) as total_tokens, "+
			"COALESCE(AVG(ai_usage_logs.latency_ms), 0) as avg_latency_ms").
		Joins("LEFT JOIN chat_conversations ON chat_conversations.id = ai_usage_logs.conversation_id").
		Where("ai_usage_logs.conversation_id IS NOT NULL").
		Group("ai_usage_logs.conversation_id, chat_conversations.title").
		Order("total_tokens DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []ConversationUsage{}
	}
	return results, nil
}

// CleanupBefore deletes usage logs older than the given time.
func (s *AIUsageService) CleanupBefore(before time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", before).Delete(&models.AIUsageLog{})
	return result.RowsAffected, result.Error
}
