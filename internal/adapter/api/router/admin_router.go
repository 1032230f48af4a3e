package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	admin := e.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/users", adminHandler.ListUsersByRole)
	admin.POST("/users/:id/role", adminHandler.AssignRole)
}
