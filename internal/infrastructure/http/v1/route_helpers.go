package v1

import (
	"github.com/gin-gonic/gin"
)

// IdentifierRouteHandler defines the endpoints of the identifier API.
type IdentifierRouteHandler interface {
	Types(c *gin.Context)
	Next(c *gin.Context)
	Current(c *gin.Context)
	Validate(c *gin.Context)
	CheckDigit(c *gin.Context)
}

// HealthRouteHandler defines the probe endpoints.
type HealthRouteHandler interface {
	Live(c *gin.Context)
	Ready(c *gin.Context)
	Info(c *gin.Context)
}

// RegisterIdentifierRoutes registers the identifier routes under rg.
//
// Usage:
//
//	handler := handlers.NewIdentifierHandler(baseHandler, cfg.Numerator)
//	RegisterIdentifierRoutes(router.Group("/api/v1"), handler)
func RegisterIdentifierRoutes(rg *gin.RouterGroup, handler IdentifierRouteHandler) {
	identifiers := rg.Group("/identifiers")
	identifiers.GET("/types", handler.Types)
	identifiers.POST("/:type/next", handler.Next)
	identifiers.GET("/:type/current", handler.Current)
	identifiers.POST("/:type/validate", handler.Validate)

	rg.POST("/checkdigits", handler.CheckDigit)
}

// RegisterHealthRoutes registers liveness and readiness probes.
func RegisterHealthRoutes(rg *gin.RouterGroup, handler HealthRouteHandler) {
	rg.GET("/live", handler.Live)
	rg.GET("/ready", handler.Ready)
	rg.GET("/info", handler.Info)
}
