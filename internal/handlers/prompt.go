package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

// PromptHandler manages the assistant prompt template library. Reads are
// open to any signed-in user so the assistant picker can list templates,
// writes are admin-only.
type PromptHandler struct {
	service *services.PromptService
}

func NewPromptHandler(db *gorm.DB) *PromptHandler {
	return &PromptHandler{
		service: services.NewPromptService(db),
	}
}

// List returns a page of prompt templates
// GET /api/prompts
func (h *PromptHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	var isSystem *bool
	if raw := c.Query("is_system"); raw != "" {
		if val, err := strconv.ParseBool(raw); err == nil {
			isSystem = &val
		}
	}

	result, err := h.service.List(services.PromptListParams{
		Page:     page,
		PageSize: pageSize,
		Name:     c.Query("name"),
		IsSystem: isSystem,
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Page(c, result.Total, page, pageSize, result.Items)
}

// GetByID returns one prompt template
// GET /api/prompts/:id
func (h *PromptHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid prompt id")
		return
	}

	prompt, err := h.service.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "prompt not found")
		return
	}

	response.Success(c, prompt)
}

// GetDefault returns the template the assistant falls back to when a
// conversation names none.
// GET /api/prompts/default
func (h *PromptHandler) GetDefault(c *gin.Context) {
	prompt, err := h.service.GetDefault()
	if err != nil {
		response.NotFound(c, "no default prompt configured")
		return
	}

	response.Success(c, prompt)
}

// GetAllActive returns every template, system ones first, for the
// assistant's prompt picker.
// GET /api/prompts/active
func (h *PromptHandler) GetAllActive(c *gin.Context) {
	prompts, err := h.service.GetAllActive()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, prompts)
}

// Create adds a prompt template. Placeholders in the content are
// extracted server-side, callers cannot set them directly.
// POST /api/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var prompt models.PromptTemplate
	if err := c.ShouldBindJSON(&prompt); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Create(&prompt); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, prompt)
}

// Update applies partial changes to a template
// PUT /api/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid prompt id")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Update(uint(id), updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "prompt not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "prompt updated"})
}

// Delete removes a user-created template. System templates are refused.
// DELETE /api/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid prompt id")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "prompt not found")
		case errors.Is(err, services.ErrSystemPrompt):
			response.Forbidden(c, "system prompts cannot be deleted")
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{"message": "prompt deleted"})
}

// SetDefault marks the given template as the assistant's fallback
// POST /api/prompts/:id/set-default
func (h *PromptHandler) SetDefault(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid prompt id")
		return
	}

	if err := h.service.SetDefault(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "prompt not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "default prompt updated"})
}
