package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/api/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.POST("", userHandler.RegisterProfile)
	users.GET("/me", userHandler.GetMe)
	users.PATCH("/me", userHandler.UpdateMe)
}
