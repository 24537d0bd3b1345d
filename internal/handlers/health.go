package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/internal/services"
)

var startedAt = time.Now()

// HealthHandler answers the load balancer probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth reports subsystem state. A dead database flips the
// response to 503 so probes stop routing traffic here, everything else
// is informational.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := models.GetDB().DB(); err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	queueMode := "sync"
	if tq := services.GetTaskQueue(); tq != nil && tq.IsAsync() {
		queueMode = "async (redis)"
	}

	// Best effort, a failed count never flips the overall status.
	var runningImports int64
	if dbStatus == "ok" {
		models.GetDB().Model(&models.ImportJob{}).
			Where("status IN ?", []string{"pending", "running"}).
			Count(&runningImports)
	}

	status := http.StatusOK
	overall := "healthy"
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":         overall,
		"service":        "daworks",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"components": gin.H{
			"database":        dbStatus,
			"queue_mode":      queueMode,
			"sse_clients":     services.GetSSEHub().ClientCount(),
			"running_imports": runningImports,
		},
	})
}
