package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerAdminUserRoutes mounts the back-office user management endpoints.
func registerAdminUserRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, checker *permissions.Checker, users *services.UserService) {
	handler := handlers.NewUserHandler(users)

	group := r.Group("/api/admin/users")
	group.Use(requireAuth, middleware.RequireAdmin())
	{
		group.GET("", middleware.RequirePermission(checker, permissions.UsersRead), handler.List)
		group.GET("/:id", middleware.RequirePermission(checker, permissions.UsersRead), handler.Get)
		group.POST("", middleware.RequirePermission(checker, permissions.UsersCreate), handler.Create)
		group.PUT("/:id", middleware.RequirePermission(checker, permissions.UsersUpdate), handler.Update)
		group.DELETE("/:id", middleware.RequirePermission(checker, permissions.UsersDelete), handler.Delete)
	}
}
