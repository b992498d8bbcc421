package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// RequireAuth rejects requests that carry no principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.ID == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "auth-require-missing-001")
			return
		}
		c.Next()
	}
}

// RequireAdmin ensures the authenticated principal carries the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.ID == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "auth-admin-missing-001")
			return
		}
		if !principal.IsAdmin() {
			responses.HandleNewError(c, platformerrors.ErrorTypeForbidden, "admin access required", "auth-admin-forbidden-001")
			return
		}
		c.Next()
	}
}
