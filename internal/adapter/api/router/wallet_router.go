package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

func SetupWalletRouter(e *echo.Echo, walletHandler *handler.WalletHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, paymentLimiter *middleware.RateLimitMiddleware) {
	wallets := e.Group("/api/v1/wallets")
	wallets.Use(authMiddleware.Authenticate)

	wallets.POST("", walletHandler.CreateWallet)
	wallets.GET("", walletHandler.GetWallets)
	wallets.GET("/:id/transactions", walletHandler.GetTransactions)
	wallets.POST("/deposit", walletHandler.Deposit, paymentLimiter.Limit)
	wallets.POST("/withdraw", walletHandler.Withdraw, paymentLimiter.Limit)

	methods := e.Group("/api/v1/payment-methods")
	methods.Use(authMiddleware.Authenticate)

	methods.POST("", walletHandler.CreatePaymentMethod)
	methods.GET("", walletHandler.GetPaymentMethods)
	methods.DELETE("/:id", walletHandler.DeletePaymentMethod)

	analytics := e.Group("/api/v1/analytics")
	analytics.Use(authMiddleware.Authenticate)
	analytics.Use(adminMiddleware.AdminOnly)

	analytics.GET("", walletHandler.GetAnalytics)
}
