// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"idforge/internal/core/numerator"
	"idforge/internal/infrastructure/http/v1/handlers"
	"idforge/internal/infrastructure/http/v1/middleware"
	"idforge/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Numerator issues and validates identifiers
	Numerator numerator.Generator

	// History is pinged by the readiness probe
	History handlers.Pinger

	// Driver and Version are reported by /health/info
	Driver  string
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.ClientContext())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.History, cfg.Driver, cfg.Version, cfg.Numerator.Types)
	RegisterHealthRoutes(router.Group("/health"), healthHandler)

	baseHandler := handlers.NewBaseHandler()
	identifierHandler := handlers.NewIdentifierHandler(baseHandler, cfg.Numerator)
	RegisterIdentifierRoutes(router.Group("/api/v1"), identifierHandler)

	return router
}
