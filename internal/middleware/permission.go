package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/pkg/errors"
	"github.com/pharmagdd/catalog/pkg/metrics"
	"github.com/pharmagdd/catalog/pkg/response"
)

// RequirePermission checks that the authenticated principal holds the given
// permission code. Denials name the missing code in the response body. The
// code is validated against the registry at wiring time.
func RequirePermission(checker *permissions.Checker, permissionCode string) gin.HandlerFunc {
	permissions.MustExist(permissionCode)

	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		allowed, err := checker.Check(c.Request.Context(), userID, permissionCode)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(permissionCode, "error").Inc()
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permissionCode, "denied").Inc()
			response.Error(c, errors.NewPermissionDenied(permissionCode))
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(permissionCode, "allowed").Inc()
		c.Next()
	}
}
