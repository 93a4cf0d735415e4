package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve requests
type ReadinessCheck func(ctx context.Context) bool

// HealthHandler reports database and model server status
type HealthHandler struct {
	db         *gorm.DB
	modelReady ReadinessCheck
}

// NewHealthHandler creates a health handler; modelReady may be nil
func NewHealthHandler(db *gorm.DB, modelReady ReadinessCheck) *HealthHandler {
	return &HealthHandler{db: db, modelReady: modelReady}
}

// HealthCheck returns the health status of the API. It answers 200 while the
// database is reachable, with "degraded" when the model server is not.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "unreachable"
	}

	modelStatus := "unknown"
	if h.modelReady != nil {
		modelStatus = "ready"
		if !h.modelReady(ctx) {
			modelStatus = "unavailable"
		}
	}

	status, code := "healthy", http.StatusOK
	switch {
	case dbStatus != "ok":
		status, code = "unhealthy", http.StatusServiceUnavailable
	case modelStatus == "unavailable":
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"database":     dbStatus,
		"model_server": modelStatus,
	})
}
