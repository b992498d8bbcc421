package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain"
	authinfra "github.com/janhq/library-api/internal/infrastructure/auth"
	"github.com/janhq/library-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// TokenValidator turns a bearer token into a principal.
type TokenValidator interface {
	Validate(token string) (domain.Principal, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AnonymousPrincipal is attached to every request when auth is disabled.
var AnonymousPrincipal = domain.Principal{ID: "anonymous", Name: "Anonymous", Roles: []string{domain.RoleAdmin}}

// AuthMiddleware validates bearer tokens and rejects revoked ones. A nil
// validator means auth is disabled; requests then run as AnonymousPrincipal.
func AuthMiddleware(validator TokenValidator, revocations RevocationChecker, logger zerolog.Logger) gin.HandlerFunc {
	if validator == nil {
		logger.Warn().Msg("auth disabled, requests run as an anonymous admin")
		return func(c *gin.Context) {
			setPrincipal(c, AnonymousPrincipal)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		token := authinfra.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing bearer token", "auth-middleware-missing-001")
			return
		}

		principal, err := validator.Validate(token)
		if err != nil {
			logger.Warn().Err(err).Str("path", c.FullPath()).Msg("token validation failed")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "invalid or expired token", "auth-middleware-invalid-001")
			return
		}

		if revocations != nil && principal.TokenID != "" {
			revoked, err := revocations.IsRevoked(c.Request.Context(), principal.TokenID)
			if err != nil {
				logger.Error().Err(err).Str("token_id", principal.TokenID).Msg("revocation check failed")
				responses.HandleError(c, err, "failed to verify token")
				return
			}
			if revoked {
				responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "token has been revoked", "auth-middleware-revoked-001")
				return
			}
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

// SetPrincipal stores the principal; tests use it to fake an authenticated caller.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	setPrincipal(c, principal)
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.ID)
	c.Writer.Header().Set("X-User-ID", principal.ID)
}
