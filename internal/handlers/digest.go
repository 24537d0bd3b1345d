package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type DigestHandler struct {
	service *services.DigestService
}

func NewDigestHandler(service *services.DigestService) *DigestHandler {
	return &DigestHandler{service: service}
}

func (h *DigestHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	digests, total, err := h.service.List(page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"items":     digests,
	})
}

func (h *DigestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	digest, err := h.service.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "digest not found")
		return
	}

	response.Success(c, digest)
}

// Generate builds and sends yesterday's digest immediately, bypassing
// the schedule and the holiday skip.
func (h *DigestHandler) Generate(c *gin.Context) {
	if err := h.service.GenerateAndSend(); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "digest generated and sent"})
}

func (h *DigestHandler) Resend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}

	if err := h.service.Resend(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "digest resent"})
}
