// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"idforge/internal/infrastructure/http/v1/dto"
)

// Pinger is implemented by every history store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store   Pinger
	driver  string
	version string
	types   func() []string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store Pinger, driver, version string, types func() []string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver, version: version, types: types}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Ready handles readiness probe (can identifiers be recorded?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status: "error",
			Checks: map[string]string{"history": "unhealthy: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: "ok",
		Checks: map[string]string{"history": "healthy"},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	var types []string
	if h.types != nil {
		types = h.types()
	}
	c.JSON(http.StatusOK, gin.H{
		"app":     "idforge",
		"version": h.version,
		"storage": h.driver,
		"types":   types,
	})
}
