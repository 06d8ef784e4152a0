package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerAdminProductRoutes mounts the back-office product management
// endpoints. Reads only require admin authentication; the mutation routes
// carry a permission gate each. The update route is gated on
// products.update only; the extra products.price.update check happens
// inside the service when the payload actually changes the price.
func registerAdminProductRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, checker *permissions.Checker, products *services.ProductService, users *services.UserService) {
	handler := handlers.NewProductHandler(products, users)

	group := r.Group("/api/admin/products")
	group.Use(requireAuth, middleware.RequireAdmin())
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequirePermission(checker, permissions.ProductsCreate), handler.Create)
		group.PUT("/:id", middleware.RequirePermission(checker, permissions.ProductsUpdate), handler.Update)
		group.DELETE("/:id", middleware.RequirePermission(checker, permissions.ProductsDelete), handler.Delete)
	}
}
