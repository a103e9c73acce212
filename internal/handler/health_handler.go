package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

var startTime = time.Now()

// Pinger reports datastore reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth responds with service and database status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	status, code, message := "healthy", http.StatusOK, "Service is healthy"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
		status, code, message = "degraded", http.StatusServiceUnavailable, "Database unreachable"
	}

	utils.Success(c, code, message, gin.H{
		"status":  status,
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"database": gin.H{
			"status": dbStatus,
		},
	})
}
