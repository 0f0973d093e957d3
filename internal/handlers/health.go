package handlers

import (
	"context"
	"net/http"
	"time"

	"user-profile-api/internal/services"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	userService *services.UserService
}

func NewHealthHandler(userService *services.UserService) *HealthHandler {
	return &HealthHandler{userService: userService}
}

// Health godoc
// @Summary Health check
// @Description Pings the database and, when enabled, redis
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.userService.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
