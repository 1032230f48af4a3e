package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

// Setup wires every route group onto the echo instance.
func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
	paymentLimiter *middleware.RateLimitMiddleware,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	walletHandler *handler.WalletHandler,
	escrowHandler *handler.EscrowHandler,
	chatHandler *handler.ChatHandler,
	wsHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
) {
	SetupHealthRouter(e, healthHandler)
	SetupUserRouter(e, userHandler, authMiddleware)
	SetupAdminRouter(e, adminHandler, authMiddleware, adminMiddleware)
	SetupWalletRouter(e, walletHandler, authMiddleware, adminMiddleware, paymentLimiter)
	SetupEscrowRouter(e, escrowHandler, authMiddleware, adminMiddleware)
	SetupChatRouter(e, chatHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler, authMiddleware)
}
