package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
)

func registerPublicAuthRoutes(router gin.IRoutes, handler *handlers.AuthHandler) {
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
}

func registerSessionRoutes(router gin.IRoutes, handler *handlers.AuthHandler) {
	router.POST("/auth/logout", handler.Logout)
	router.GET("/auth/me", handler.Me)
}

func registerUserRoutes(admin gin.IRoutes, handler *handlers.UserHandler) {
	admin.GET("/users", handler.List)
	admin.GET("/users/:id", handler.Get)
	admin.PATCH("/users/:id/status", handler.SetStatus)
	admin.PATCH("/users/:id/role", handler.SetRole)
}
