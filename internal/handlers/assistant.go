package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type AssistantHandler struct {
	assistantService *services.AssistantService
}

func NewAssistantHandler(db *gorm.DB, cfg *config.OpenAIConfig) *AssistantHandler {
	return &AssistantHandler{
		assistantService: services.NewAssistantService(cfg, db),
	}
}

// ListConversations returns the current user's conversations
// GET /api/assistant/conversations
func (h *AssistantHandler) ListConversations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	userID := middleware.GetUserID(c)
	items, total, err := h.assistantService.ListConversations(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Page(c, total, page, pageSize, items)
}

// GetConversation returns a conversation with its messages
// GET /api/assistant/conversations/:id
func (h *AssistantHandler) GetConversation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	userID := middleware.GetUserID(c)
	conv, err := h.assistantService.GetConversation(userID, uint(id))
	if err != nil {
		response.NotFound(c, "conversation not found")
		return
	}

	response.Success(c, conv)
}

// CreateConversation starts a new conversation
// POST /api/assistant/conversations
func (h *AssistantHandler) CreateConversation(c *gin.Context) {
	var req services.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	conv, err := h.assistantService.CreateConversation(userID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, conv)
}

type updateConversationRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// UpdateConversation renames a conversation
// PUT /api/assistant/conversations/:id
func (h *AssistantHandler) UpdateConversation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	var req updateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	conv, err := h.assistantService.UpdateConversationTitle(userID, uint(id), req.Title)
	if err != nil {
		response.NotFound(c, "conversation not found")
		return
	}

	response.Success(c, conv)
}

// DeleteConversation deletes a conversation and its messages
// DELETE /api/assistant/conversations/:id
func (h *AssistantHandler) DeleteConversation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.assistantService.DeleteConversation(userID, uint(id)); err != nil {
		response.NotFound(c, "conversation not found")
		return
	}

	response.Success(c, gin.H{"message": "conversation deleted successfully"})
}

type sendMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	LLMConfigID *uint  `json:"llm_config_id"`
}

// SendMessage appends a user message and returns the assistant reply.
// Provider failures come back as a failed assistant message, not an
// HTTP error, so the conversation stays usable.
// POST /api/assistant/conversations/:id/messages
func (h *AssistantHandler) SendMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.assistantService.SendMessage(c.Request.Context(), userID, uint(id), req.Content, req.LLMConfigID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, msg)
}

type chatRequest struct {
	Messages    []services.ChatTurn `json:"messages" binding:"required,min=1,dive"`
	LLMConfigID *uint               `json:"llm_config_id"`
}

// Chat is the stateless completion proxy. Nothing is persisted except
// the usage log.
// POST /api/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.assistantService.Completion(c.Request.Context(), req.Messages, req.LLMConfigID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, result)
}
