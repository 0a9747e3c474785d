package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mediarelay/internal/port"
)

const readinessTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store port.MediaStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store port.MediaStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusOK})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Reports whether the configured media store is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: HealthStatusUnavailable,
			Error:  "media store not reachable",
		})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusOK})
}
