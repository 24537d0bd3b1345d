package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/services"
)

type SystemConfigHandler struct {
	configService  *services.SystemConfigService
	holidayService *services.HolidayService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService:  services.NewSystemConfigService(db),
		holidayService: services.NewHolidayService(),
	}
}

func (h *SystemConfigHandler) GetLDAPConfig(c *gin.Context) {
	config := h.configService.GetLDAPConfig()
	c.JSON(http.StatusOK, config)
}

func (h *SystemConfigHandler) UpdateLDAPConfig(c *gin.Context) {
	var req services.UpdateLDAPConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configService.UpdateLDAPConfig(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.configService.GetLDAPConfig())
}

func (h *SystemConfigHandler) GetDigestConfig(c *gin.Context) {
	config := h.configService.GetDigestConfig()
	c.JSON(http.StatusOK, config)
}

func (h *SystemConfigHandler) UpdateDigestConfig(c *gin.Context) {
	var req services.UpdateDigestConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.HolidayCountry != "" && !h.holidayService.IsValidCountry(req.HolidayCountry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown holiday country"})
		return
	}

	if err := h.configService.UpdateDigestConfig(&req); err != nil {
		if errors.Is(err, services.ErrBadDigestTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.configService.GetDigestConfig())
}

// ListHolidayCountries returns the calendars available for the digest
// holiday skip.
func (h *SystemConfigHandler) ListHolidayCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": h.holidayService.Countries()})
}
