package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler serves the service health endpoints.
type HealthHandler struct {
	db           *gorm.DB
	aiConfigured bool
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, aiConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, aiConfigured: aiConfigured}
}

// Root answers the basic liveness probe.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Edu-SmartAI API",
		"version": "1.0.0",
	})
}

// Health answers the detailed health probe, checking database
// connectivity and whether generation is configured.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	database := "connected"

	sqlDB, errDB := h.db.DB()
	if errDB != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		database = "unreachable"
	}

	openaiState := "not configured"
	if h.aiConfigured {
		openaiState = "configured"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"database": database,
		"openai":   openaiState,
	})
}
