package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

func SetupEscrowRouter(e *echo.Echo, escrowHandler *handler.EscrowHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	escrows := e.Group("/api/v1/escrows")
	escrows.Use(authMiddleware.Authenticate)

	escrows.POST("", escrowHandler.CreateEscrow)
	escrows.GET("", escrowHandler.ListEscrows)
	escrows.GET("/:id", escrowHandler.GetEscrow)
	escrows.POST("/:id/fund", escrowHandler.Fund)
	escrows.POST("/:id/satisfy", escrowHandler.SatisfyCondition)
	escrows.POST("/:id/release", escrowHandler.Release)
	escrows.POST("/:id/dispute", escrowHandler.Dispute)

	disputes := e.Group("/api/v1/disputes")
	disputes.Use(authMiddleware.Authenticate)
	disputes.GET("/:id", escrowHandler.GetDispute)

	// Hold, refund and arbitration are operator actions.
	admin := e.Group("/api/v1/admin/escrows")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("/:id/hold", escrowHandler.Hold)
	admin.POST("/:id/refund", escrowHandler.Refund)
	admin.POST("/:id/resolve", escrowHandler.ResolveDispute)
}
