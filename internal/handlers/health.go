package handlers

import (
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides the liveness endpoint.
type HealthHandler struct {
	outbox *services.OutboxService
}

func NewHealthHandler(outbox *services.OutboxService) *HealthHandler {
	return &HealthHandler{outbox: outbox}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	mirrorMode := "disabled"
	var pendingOps int64
	if h.outbox != nil && h.outbox.Enabled() {
		mirrorMode = "enabled"
		pendingOps = h.outbox.PendingCount()
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "guildtracker",
		"components": gin.H{
			"database":           dbStatus,
			"queue_mode":         queueMode,
			"mirror":             mirrorMode,
			"pending_mirror_ops": pendingOps,
		},
	})
}
