package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/internal/services"
)

var startTime = time.Now()

// Metrics returns Prometheus-compatible text format metrics.
func Metrics(c *gin.Context) {
	var b strings.Builder

	// -- Runtime metrics --
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "daworks_uptime_seconds", "Time since server start in seconds", float64(time.Since(startTime).Seconds()))
	writeGauge(&b, "daworks_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "daworks_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "daworks_memory_sys_bytes", "Total memory obtained from OS in bytes", float64(m.Sys))
	writeGauge(&b, "daworks_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	// -- Database metrics --
	db := models.GetDB()
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			stats := sqlDB.Stats()
			writeGauge(&b, "daworks_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
			writeGauge(&b, "daworks_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
			writeGauge(&b, "daworks_db_idle_connections", "Number of idle DB connections", float64(stats.Idle))
		}
	}

	// -- SSE metrics --
	sseHub := services.GetSSEHub()
	if sseHub != nil {
		writeGauge(&b, "daworks_sse_active_clients", "Number of active SSE connections", float64(sseHub.ClientCount()))
	}

	// -- Queue metrics --
	taskQueue := services.GetTaskQueue()
	queueAsync := 0.0
	if taskQueue != nil && taskQueue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "daworks_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", queueAsync)

	// -- Business metrics --
	if db != nil {
		var openTasks, unackedTasks int64
		db.Model(&models.Task{}).Where("status IN ?", []string{models.TaskStatusTodo, models.TaskStatusInProgress}).Count(&openTasks)
		db.Model(&models.Task{}).Where("acknowledged_at IS NULL").Count(&unackedTasks)

		writeGauge(&b, "daworks_tasks_open", "Number of open tasks", float64(openTasks))
		writeGauge(&b, "daworks_tasks_unacknowledged", "Number of tasks without a read receipt", float64(unackedTasks))

		var patientCount, boardCount, userCount int64
		db.Model(&models.Patient{}).Count(&patientCount)
		db.Model(&models.Board{}).Count(&boardCount)
		db.Model(&models.User{}).Where("is_active = ?", true).Count(&userCount)

		writeGauge(&b, "daworks_patients_total", "Total number of patients", float64(patientCount))
		writeGauge(&b, "daworks_boards_total", "Total number of boards", float64(boardCount))
		writeGauge(&b, "daworks_users_active", "Number of active users", float64(userCount))

		since24h := time.Now().Add(-24 * time.Hour)
		var leads24h, aiCalls24h int64
		db.Model(&models.Lead{}).Where("created_at >= ?", since24h).Count(&leads24h)
		db.Model(&models.AIUsageLog{}).Where("created_at >= ?", since24h).Count(&aiCalls24h)

		writeGauge(&b, "daworks_leads_24h", "Leads captured in the last 24 hours", float64(leads24h))
		writeGauge(&b, "daworks_ai_calls_24h", "AI API calls in the last 24 hours", float64(aiCalls24h))
	}

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
