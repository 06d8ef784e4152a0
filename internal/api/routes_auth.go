package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/pharmagdd/catalog/internal/auth"
	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/services"
)

// registerAuthRoutes mounts the storefront authentication flows.
func registerAuthRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, users *services.UserService, sessions *iauth.SessionService) {
	handler := handlers.NewAuthHandler(users, sessions)

	group := r.Group("/api/auth")
	{
		group.POST("/register", handler.Register)
		group.POST("/login", handler.Login)
		group.POST("/refresh", handler.Refresh)

		group.GET("/me", requireAuth, handler.Me)
		group.POST("/logout", requireAuth, handler.Logout)
	}
}
