package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
)

func registerLoanRoutes(protected, admin gin.IRoutes, handler *handlers.LoanHandler) {
	protected.GET("/borrow/mine", handler.Mine)
	protected.PUT("/borrow/:id/return", handler.Return)

	admin.POST("/borrow", handler.Borrow)
	admin.GET("/borrow", handler.List)
	admin.GET("/borrow/user/:userId", handler.ListForUser)
}

func registerAdminRoutes(admin gin.IRoutes, handler *handlers.AdminHandler) {
	admin.GET("/admin/stats", handler.Stats)
	admin.POST("/admin/reminders/run", handler.RunReminders)
	admin.GET("/catalog/search", handler.SearchCatalog)
}
