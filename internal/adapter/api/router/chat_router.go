package router

import (
	"github.com/labstack/echo/v4"

	"recyclex/internal/adapter/api/handler"
	"recyclex/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/api/v1/conversations")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.GetConversations)
	chats.POST("", chatHandler.CreateRoom)
	chats.GET("/:id/messages", chatHandler.GetMessages)
	chats.POST("/:id/read", chatHandler.MarkConversationRead)
}
