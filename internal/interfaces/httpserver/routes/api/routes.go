package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/library-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates route registration under /api.
type Routes struct {
	handlers *handlers.Provider
	authn    gin.HandlerFunc
}

// NewRoutes builds the /api route registrar.
func NewRoutes(handlerProvider *handlers.Provider, authn gin.HandlerFunc) *Routes {
	return &Routes{
		handlers: handlerProvider,
		authn:    authn,
	}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/api")

	// Public
	registerPublicAuthRoutes(group, r.handlers.Auth)

	protected := group.Group("", r.authn, middlewares.RequireAuth())
	admin := protected.Group("", middlewares.RequireAdmin())

	registerSessionRoutes(protected, r.handlers.Auth)
	registerUserRoutes(admin, r.handlers.User)
	registerMediaRoutes(protected, admin, r.handlers.Media, r.handlers.Review)
	registerLoanRoutes(protected, admin, r.handlers.Loan)
	registerAdminRoutes(admin, r.handlers.Admin)
}
