package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// currentPrincipal returns the caller or aborts with 401.
func currentPrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok || principal.ID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "handler-principal-missing-001")
		return domain.Principal{}, false
	}
	return principal, true
}
