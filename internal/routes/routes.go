package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"finance-aggregation-backend/internal/handlers"
	"finance-aggregation-backend/internal/provider"
	"finance-aggregation-backend/internal/repository"
	"finance-aggregation-backend/internal/services/sync"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	userRepo := repository.NewUserRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	syncRunRepo := repository.NewSyncRunRepository(db)
	netWorthRepo := repository.NewNetWorthRepository(db)
	trendRepo := repository.NewTrendRepository(db)

	providerClient := provider.NewClient()
	store := repository.NewGormStore(db)
	syncService := sync.NewService(store, providerClient)

	userHandler := handlers.NewUserHandler(userRepo)
	institutionHandler := handlers.NewInstitutionHandler(institutionRepo, providerClient)
	accountHandler := handlers.NewAccountHandler(accountRepo, institutionRepo, providerClient)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	syncHandler := handlers.NewSyncHandler(syncService, syncRunRepo)
	netWorthHandler := handlers.NewNetWorthHandler(netWorthRepo)
	trendHandler := handlers.NewTrendHandler(trendRepo)

	api := r.Group("/api/v1")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth / users
	auth := api.Group("/auth")
	auth.POST("/register", userHandler.Register)
	auth.POST("/login", userHandler.Login)
	api.GET("/users/:id", userHandler.Get)

	// Institution linking and management
	institutions := api.Group("/institutions")
	institutions.POST("/link-token", institutionHandler.CreateLinkToken)
	institutions.POST("/exchange", institutionHandler.ExchangePublicToken)
	institutions.GET("", institutionHandler.List)
	institutions.DELETE("/:id", institutionHandler.Delete)
	institutions.POST("/:id/refresh-balances", accountHandler.RefreshBalances)
	institutions.GET("/:id/sync-runs", syncHandler.ListSyncRuns)

	// Accounts
	api.GET("/accounts", accountHandler.List)

	// Transactions
	tx := api.Group("/transactions")
	tx.GET("/sync", syncHandler.SyncTransactions)
	tx.POST("", transactionHandler.Create)
	tx.GET("", transactionHandler.List)
	tx.PUT("/:id", transactionHandler.Update)
	tx.DELETE("/:id", transactionHandler.Delete)

	// Categories
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.List)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)

	// Net worth snapshots
	netWorth := api.Group("/net-worth")
	netWorth.PUT("", netWorthHandler.Save)
	netWorth.GET("", netWorthHandler.List)

	// Spending trends
	trends := api.Group("/trends")
	trends.PUT("", trendHandler.Save)
	trends.GET("", trendHandler.List)
}
