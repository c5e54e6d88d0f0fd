// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/core/security"
	"stockroom/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
	GetTree(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Actions follow the "<entity>.<verb>" naming that the permission rules
// match on, e.g. "product.read".
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, oracle security.Oracle, entity string) {
	group.GET("", middleware.RequirePermission(oracle, entity+".read"), handler.List)
	group.POST("", middleware.RequirePermission(oracle, entity+".create"), handler.Create)
	group.GET("/tree", middleware.RequirePermission(oracle, entity+".read"), handler.GetTree)
	group.GET("/:id", middleware.RequirePermission(oracle, entity+".read"), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(oracle, entity+".update"), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(oracle, entity+".delete"), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(oracle, entity+".delete"), handler.SetDeletionMark)
}
