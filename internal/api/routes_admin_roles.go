package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerAdminRoleRoutes mounts role and permission management. Roles
// cannot be deleted through the API.
func registerAdminRoleRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, checker *permissions.Checker, roles *services.RoleService, users *services.UserService) {
	handler := handlers.NewRoleHandler(roles, users)

	group := r.Group("/api/admin/roles")
	group.Use(requireAuth, middleware.RequireAdmin())
	{
		group.GET("", middleware.RequirePermission(checker, permissions.RolesRead), handler.List)
		group.GET("/:id", middleware.RequirePermission(checker, permissions.RolesRead), handler.Get)
		group.POST("", middleware.RequirePermission(checker, permissions.RolesCreate), handler.Create)
		group.PUT("/:id", middleware.RequirePermission(checker, permissions.RolesUpdate), handler.Update)
	}

	perms := r.Group("/api/admin/permissions")
	perms.Use(requireAuth, middleware.RequireAdmin())
	{
		perms.GET("", middleware.RequirePermission(checker, permissions.PermissionsRead), handler.Permissions)
	}
}
