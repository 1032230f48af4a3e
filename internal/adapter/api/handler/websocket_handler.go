package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "recyclex/internal/infrastructure/websocket"
	"recyclex/pkg/errors"
)

type WebSocketHandler struct {
	hub          *ws.Hub
	frameHandler *ws.FrameHandler
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(hub *ws.Hub, frameHandler *ws.FrameHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		frameHandler: frameHandler,
	}
}

// HandleWebSocket upgrades the connection and starts the read/write pumps.
// Auth middleware runs before this, so identity comes from the context.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	userName, _ := c.Get("name").(string)
	role, _ := c.Get("role").(string)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(userID, userName, role, conn)
	h.hub.Register <- client

	// The request context dies when this handler returns; the pump outlives it.
	go h.frameHandler.ReadPump(context.Background(), client)
	go client.WritePump()

	return nil
}
