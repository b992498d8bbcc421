package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
)

func registerMediaRoutes(protected, admin gin.IRoutes, media *handlers.MediaHandler, reviews *handlers.ReviewHandler) {
	protected.GET("/media", media.List)
	protected.GET("/media/categories", media.Categories)
	protected.GET("/media/tags", media.Tags)
	protected.GET("/media/:id", media.Get)
	protected.GET("/media/:id/reviews", reviews.ListForMedia)
	protected.POST("/media/:id/reviews", reviews.Create)
	protected.DELETE("/reviews/:id", reviews.Delete)

	admin.POST("/media", media.Create)
	admin.PUT("/media/:id", media.Update)
	admin.DELETE("/media/:id", media.Delete)
	admin.POST("/media/:id/cover", media.UploadCover)
}
