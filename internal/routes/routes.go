// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers together and applies
// authentication and role guards per route group.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/config"
	"github.com/hassan-nahid/digital-wallet-backend/internal/handlers"
	"github.com/hassan-nahid/digital-wallet-backend/internal/middleware"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/auth"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/transaction"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/user"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/wallet"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	store := repositories.NewStore(db)

	jwtSecret := config.GetEnv("JWT_SECRET", "digital-wallet")
	authService := auth.NewService(store.Users(), jwtSecret)
	userService := user.NewService(store)
	walletService := wallet.NewService(store, repositories.CacheService)
	transactionService := transaction.NewService(
		store,
		repositories.CacheService,
		transaction.NoopMetricsCollector{},
	)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(walletService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Digital Wallet API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/auth/register", userHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Protected routes with auth middleware
	protected := api.Use(middleware.Auth(jwtSecret))

	setupUserRoutes(protected, userHandler)
	setupWalletRoutes(protected, walletHandler)
	setupTransactionRoutes(protected, transactionHandler)
}

func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	users := router.Group("/users")

	users.Get("/me", h.GetMe)
	users.Get("/search", h.SearchUser)
	users.Get("/search-agent", h.SearchAgent)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	users.Patch("/make-agent/:id", adminOnly, h.MakeAgent)
	users.Patch("/suspend-agent/:id", adminOnly, h.SuspendAgent)
	users.Patch("/block/:id", adminOnly, h.BlockUser)
	users.Patch("/unblock/:id", adminOnly, h.UnblockUser)
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler) {
	wallets := router.Group("/wallets")

	wallets.Get("/me", h.GetMyWallet)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	wallets.Get("/", adminOnly, h.GetAllWallets)
	wallets.Get("/analytics", adminOnly, h.GetAnalytics)
	wallets.Patch("/block/:userId", adminOnly, h.BlockWallet)
	wallets.Patch("/unblock/:userId", adminOnly, h.UnblockWallet)
}

func setupTransactionRoutes(router fiber.Router, h *handlers.TransactionHandler) {
	transactions := router.Group("/transactions")

	// Role eligibility for each operation is enforced by the engine, which
	// also validates the sender and receiver records themselves.
	transactions.Post("/add-money", h.AddMoney)
	transactions.Post("/send-money", h.SendMoney)
	transactions.Post("/cash-in", h.CashIn)
	transactions.Post("/cash-out", h.CashOut)

	transactions.Get("/me", h.GetMyTransactions)
	transactions.Get("/me/:id", h.GetMyTransactionByID)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	transactions.Post("/withdraw", adminOnly, h.AdminWithdraw)
	transactions.Get("/", adminOnly, h.GetAllTransactions)
	transactions.Get("/analytics", adminOnly, h.GetAnalytics)
}
