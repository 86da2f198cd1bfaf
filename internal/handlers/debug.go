package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"race-service/internal/telemetry"
	"race-service/pkg/jwt"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, tokens *jwt.Manager, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Mints a local token so the chat endpoints can be exercised without a
	// separate identity provider.
	router.POST("/debug/token", func(c *gin.Context) {
		var req struct {
			UserID int    `json:"user_id" binding:"required"`
			Name   string `json:"name" binding:"required"`
			Role   string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, err := tokens.GenerateToken(req.UserID, req.Name, req.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mint token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
}
