package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/pharmagdd/catalog/internal/auth"
	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerAdminAuthRoutes mounts the back-office authentication flows.
// The role listing stays anonymous because the admin registration form needs
// it before anyone is signed in.
func registerAdminAuthRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, checker *permissions.Checker, users *services.UserService, roles *services.RoleService, sessions *iauth.SessionService) {
	handler := handlers.NewAdminAuthHandler(users, sessions, roles)

	group := r.Group("/api/admin/auth")
	{
		group.POST("/login", handler.Login)
		group.POST("/refresh", handler.Refresh)
		group.GET("/roles", handler.Roles)

		group.GET("/me", requireAuth, middleware.RequireAdmin(), handler.Me)
		group.POST("/logout", requireAuth, middleware.RequireAdmin(), handler.Logout)
		group.POST("/register",
			requireAuth,
			middleware.RequireAdmin(),
			middleware.RequirePermission(checker, permissions.AdminsCreate),
			handler.Register)
	}
}
