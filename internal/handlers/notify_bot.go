package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type NotifyBotHandler struct {
	botService *services.NotifyBotService
}

func NewNotifyBotHandler(db *gorm.DB) *NotifyBotHandler {
	return &NotifyBotHandler{
		botService: services.NewNotifyBotService(db),
	}
}

func (h *NotifyBotHandler) List(c *gin.Context) {
	var req services.NotifyBotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.botService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

func (h *NotifyBotHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bot id")
		return
	}

	bot, err := h.botService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "bot not found")
		return
	}

	response.Success(c, bot)
}

func (h *NotifyBotHandler) Create(c *gin.Context) {
	var req services.CreateNotifyBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bot, err := h.botService.Create(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, bot)
}

func (h *NotifyBotHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bot id")
		return
	}

	var req services.UpdateNotifyBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bot, err := h.botService.Update(uint(id), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, bot)
}

func (h *NotifyBotHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bot id")
		return
	}

	if err := h.botService.Delete(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "bot deleted successfully"})
}

// SendTest posts a test message through the bot's webhook.
func (h *NotifyBotHandler) SendTest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bot id")
		return
	}

	if err := h.botService.SendTest(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "test message sent"})
}
