package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/internal/services"
	appErrors "github.com/pharmagdd/catalog/pkg/errors"
)

func currentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.CtxUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func currentSessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.CtxSessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// loadPrincipal resolves the authenticated user with the role and its
// permissions, for handlers that pass the principal into service calls.
func loadPrincipal(c *gin.Context, users *services.UserService) (*models.User, error) {
	id, ok := currentUserID(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	principal, err := users.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, appErrors.ErrUnauthorized
	}
	return principal, nil
}
