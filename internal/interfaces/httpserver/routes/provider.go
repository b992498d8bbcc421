package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/library-api/internal/interfaces/httpserver/routes/api"
)

// Provider coordinates all route registrations.
type Provider struct {
	API *api.Routes
}

// NewProvider constructs the route provider. authn authenticates protected routes.
func NewProvider(handlerProvider *handlers.Provider, authn gin.HandlerFunc) *Provider {
	return &Provider{
		API: api.NewRoutes(handlerProvider, authn),
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.API.Register(engine)
}
