package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

// AIUsageHandler provides endpoints for AI usage statistics.
type AIUsageHandler struct {
	usageService *services.AIUsageService
}

func NewAIUsageHandler(db *gorm.DB) *AIUsageHandler {
	return &AIUsageHandler{
		usageService: services.NewAIUsageService(db),
	}
}

// conversationIDQuery reads the optional conversation filter. Garbage
// values just mean no filter.
func conversationIDQuery(c *gin.Context) *uint {
	raw := c.Query("conversation_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}

// GetStats returns aggregated AI usage statistics.
func (h *AIUsageHandler) GetStats(c *gin.Context) {
	stats, err := h.usageService.GetStats(c.Query("start_date"), c.Query("end_date"), conversationIDQuery(c))
	if err != nil {
		response.ServerError(c, "failed to get AI usage stats: "+err.Error())
		return
	}

	response.Success(c, stats)
}

// GetDailyTrend returns daily AI usage data for charting.
func (h *AIUsageHandler) GetDailyTrend(c *gin.Context) {
	trend, err := h.usageService.GetDailyTrend(c.Query("start_date"), c.Query("end_date"), conversationIDQuery(c))
	if err != nil {
		response.ServerError(c, "failed to get AI usage trend: "+err.Error())
		return
	}

	response.Success(c, trend)
}

// GetProviderBreakdown returns AI usage grouped by provider/model.
func (h *AIUsageHandler) GetProviderBreakdown(c *gin.Context) {
	providers, err := h.usageService.GetProviderBreakdown(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.ServerError(c, "failed to get provider breakdown: "+err.Error())
		return
	}

	response.Success(c, providers)
}

// GetTopConversations returns the conversations with the highest token
// spend in the range.
func (h *AIUsageHandler) GetTopConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	conversations, err := h.usageService.GetTopConversations(c.Query("start_date"), c.Query("end_date"), limit)
	if err != nil {
		response.ServerError(c, "failed to get top conversations: "+err.Error())
		return
	}

	response.Success(c, conversations)
}
