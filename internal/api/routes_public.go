package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerPublicRoutes mounts the anonymous storefront catalog.
func registerPublicRoutes(r *gin.Engine, products *services.ProductService) {
	handler := handlers.NewPublicProductHandler(products)

	group := r.Group("/api/products")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
	}
}
