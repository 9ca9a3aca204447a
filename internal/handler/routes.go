package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/koshapp/kosh-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, accountHandler *AccountHandler, categoryHandler *CategoryHandler, contactHandler *ContactHandler, transactionHandler *TransactionHandler, budgetHandler *BudgetHandler, reportHandler *ReportHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (register and login are public, throttled by client IP)
	auth := api.Group("/auth")
	throttled := middleware.RateLimitMiddleware(rateLimiter)
	auth.POST("/register", authHandler.Register, throttled)
	auth.POST("/login", authHandler.Login, throttled)

	authed := auth.Group("")
	authed.Use(authMiddleware.Authenticate())
	authed.GET("/me", authHandler.Me)
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/logout-all", authHandler.LogoutAll)

	// Account routes (protected)
	accounts := api.Group("/accounts")
	accounts.Use(authMiddleware.Authenticate())
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	api.GET("/accounts-summary", accountHandler.GetSummary, authMiddleware.Authenticate())

	// Category routes (protected)
	categories := api.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Contact routes (protected)
	contacts := api.Group("/contacts")
	contacts.Use(authMiddleware.Authenticate())
	contacts.POST("", contactHandler.CreateContact)
	contacts.GET("", contactHandler.GetContacts)
	contacts.GET("/:id", contactHandler.GetContact)
	contacts.PUT("/:id", contactHandler.UpdateContact)
	contacts.DELETE("/:id", contactHandler.DeleteContact)
	api.GET("/contacts-summary", contactHandler.GetSummary, authMiddleware.Authenticate())

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate())
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	api.GET("/transactions-statistics", reportHandler.GetStatistics, authMiddleware.Authenticate())
	api.GET("/transactions-spending-by-category", reportHandler.GetSpendingByCategory, authMiddleware.Authenticate())

	// Budget routes (protected)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware.Authenticate())
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// WebSocket endpoint (token authenticated via query parameter)
	e.GET("/ws", wsHandler.HandleWS)
}
