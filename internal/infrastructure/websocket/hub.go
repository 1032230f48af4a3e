package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"recyclex/pkg/logger"
)

// Frame is the single wire shape in both directions. Client requests carry
// ID+Op; the matching ack carries the same ID plus Success and Data or Error.
// Server pushes carry Event and Data, no ID.
type Frame struct {
	ID      string          `json:"id,omitempty"`
	Op      string          `json:"op,omitempty"`
	Event   string          `json:"event,omitempty"`
	Success bool            `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is one connected user.
type Client struct {
	UserID   string
	UserName string
	Role     string
	Conn     *websocket.Conn
	Send     chan []byte

	rooms map[string]bool
	mu    sync.Mutex
}

func NewClient(userID, userName, role string, conn *websocket.Conn) *Client {
	return &Client{
		UserID:   userID,
		UserName: userName,
		Role:     role,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		rooms:    make(map[string]bool),
	}
}

// Hub tracks connected clients and room membership and fans events out to
// them.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	Register   chan *Client
	Unregister chan *Client

	mutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the hub's registration loop until the context ends.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.Register:
				h.mutex.Lock()
				h.clients[client.UserID] = client
				h.mutex.Unlock()
				logger.Info("Client connected: %s (%s)", client.UserID, client.Role)
				h.BroadcastPresence(client.UserID, true)

			case client := <-h.Unregister:
				h.mutex.Lock()
				if current, ok := h.clients[client.UserID]; ok && current == client {
					delete(h.clients, client.UserID)
					for room := range client.rooms {
						delete(h.rooms[room], client.UserID)
					}
					close(client.Send)
				}
				h.mutex.Unlock()
				logger.Info("Client disconnected: %s", client.UserID)
				h.BroadcastPresence(client.UserID, false)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) JoinRoom(client *Client, room string) {
	h.mutex.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][client.UserID] = client
	h.mutex.Unlock()

	client.mu.Lock()
	client.rooms[room] = true
	client.mu.Unlock()
}

func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mutex.Lock()
	delete(h.rooms[room], client.UserID)
	h.mutex.Unlock()

	client.mu.Lock()
	delete(client.rooms, room)
	client.mu.Unlock()
}

// PushEvent sends an event frame to one user. Dropped silently if the user is
// offline.
func (h *Hub) PushEvent(userID, event string, payload interface{}) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		return
	}

	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()
	if ok {
		client.enqueue(data)
	}
}

// BroadcastToRoom sends an event frame to everyone in a room, except the
// optional sender.
func (h *Hub) BroadcastToRoom(room, exceptUserID, event string, payload interface{}) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		return
	}

	h.mutex.RLock()
	for userID, client := range h.rooms[room] {
		if userID == exceptUserID {
			continue
		}
		client.enqueue(data)
	}
	h.mutex.RUnlock()
}

// BroadcastToUsers sends an event frame to a specific set of users.
func (h *Hub) BroadcastToUsers(userIDs []string, exceptUserID, event string, payload interface{}) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		return
	}

	h.mutex.RLock()
	for _, userID := range userIDs {
		if userID == exceptUserID {
			continue
		}
		if client, ok := h.clients[userID]; ok {
			client.enqueue(data)
		}
	}
	h.mutex.RUnlock()
}

// BroadcastPresence tells everyone a user's online status changed.
func (h *Hub) BroadcastPresence(userID string, online bool) {
	data, err := marshalEvent("user_online_status", map[string]interface{}{
		"user_id":   userID,
		"is_online": online,
	})
	if err != nil {
		return
	}

	h.mutex.RLock()
	for id, client := range h.clients {
		if id == userID {
			continue
		}
		client.enqueue(data)
	}
	h.mutex.RUnlock()
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func marshalEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal %s event: %v", event, err)
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// enqueue drops the frame if the client's buffer is full rather than blocking
// the hub.
func (c *Client) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
		logger.Warn("Dropping frame for slow client %s", c.UserID)
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("Write failed for %s: %v", c.UserID, err)
			return
		}
	}
}
