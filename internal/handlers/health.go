package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/internal/services"
)

// HealthHandler reports subsystem health.
type HealthHandler struct {
	queue services.ReminderQueue
	hub   *services.EventHub
}

func NewHealthHandler(queue services.ReminderQueue, hub *services.EventHub) *HealthHandler {
	return &HealthHandler{queue: queue, hub: hub}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "sisgic",
		"components": gin.H{
			"database":    dbStatus,
			"queue_mode":  queueMode,
			"sse_clients": h.hub.ClientCount(),
		},
	})
}
