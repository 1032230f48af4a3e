package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"recyclex/internal/domain/entity"
	"recyclex/pkg/logger"
)

const (
	defaultMaxAttempts  = 5
	defaultBackoffBase  = time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Identity is what the adapter presents on connect.
type Identity struct {
	UserID string
	Role   string
	Token  string
}

// Handlers are the server-push callbacks wired to the store's mutation API.
// Nil handlers are skipped.
type Handlers struct {
	OnNewMessage          func(entity.Message)
	OnMessageUpdated      func(entity.Message)
	OnMessageDeleted      func(conversationID, messageID string)
	OnTypingStatus        func(entity.TypingStatus)
	OnPresenceChange      func(userID string, online bool)
	OnConversationUpdated func(entity.Conversation)
	OnUploadProgress      func(messageID string, progress int)
	OnConnectionChange    func(status string)
}

// Transport wraps a bidirectional websocket connection. It owns the
// reconnection policy (exponential backoff, attempt ceiling of 5, counter
// reset on success) and nothing else: failed request operations are never
// retried here, higher layers decide whether to resend.
type Transport struct {
	url      string
	handlers Handlers

	maxAttempts int
	backoffBase time.Duration

	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     *websocket.Conn
	identity Identity
	attempts int
	closed   bool
	pending  map[string]chan frame
}

func New(url string, handlers Handlers) *Transport {
	return &Transport{
		url:         url,
		handlers:    handlers,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		pending:     make(map[string]chan frame),
	}
}

// SetBackoff overrides the reconnect policy. Zero values keep the defaults.
func (t *Transport) SetBackoff(base time.Duration, maxAttempts int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if base > 0 {
		t.backoffBase = base
	}
	if maxAttempts > 0 {
		t.maxAttempts = maxAttempts
	}
}

// Connect dials the server, retrying with exponential backoff up to the
// attempt ceiling. On success it joins the identity's role-derived rooms and
// starts the read loop.
func (t *Transport) Connect(ctx context.Context, identity Identity) error {
	t.mu.Lock()
	t.identity = identity
	t.closed = false
	t.mu.Unlock()

	t.notifyConnection("connecting")

	for {
		err := t.dial(ctx, identity)
		if err == nil {
			return nil
		}

		t.mu.Lock()
		if t.attempts < t.maxAttempts {
			t.attempts++ // counter halts growth at the ceiling
		}
		attempts := t.attempts
		maxAttempts := t.maxAttempts
		delay := t.backoffBase << uint(attempts-1) // base delay doubling per attempt
		t.mu.Unlock()

		logger.Warn("transport: connect attempt %d failed: %v", attempts, err)

		if attempts >= maxAttempts {
			t.notifyConnection("error")
			return fmt.Errorf("connect: gave up after %d attempts: %w", attempts, err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *Transport) dial(ctx context.Context, identity Identity) error {
	header := http.Header{}
	if identity.Token != "" {
		header.Set("Authorization", "Bearer "+identity.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, header)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.attempts = 0 // counter resets on a successful connect
	t.mu.Unlock()

	t.notifyConnection("connected")

	go t.readLoop(conn)

	for _, room := range RoomsForRole(identity.Role) {
		if _, err := t.Send(ctx, OpJoinRoom, RoomRequest{RoomID: room}); err != nil {
			logger.Warn("transport: failed to join room %s: %v", room, err)
		}
	}

	return nil
}

// Attempts returns the current consecutive-failure count.
func (t *Transport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Send performs a request/ack operation and returns the server data payload.
func (t *Transport) Send(ctx context.Context, op string, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	ch := make(chan frame, 1)

	t.mu.Lock()
	conn := t.conn
	if conn == nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("not connected")
	}
	t.pending[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	if err := t.write(conn, frame{ID: id, Op: op, Data: data}); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		if !resp.Success {
			return nil, fmt.Errorf("%s failed: %s", op, resp.Error)
		}
		return resp.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Emit performs a fire-and-forget operation (typing, presence). Nothing comes
// back; a write on a dead connection is reported as an error.
func (t *Transport) Emit(op string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	return t.write(conn, frame{Op: op, Data: data})
}

func (t *Transport) write(conn *websocket.Conn, f frame) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return conn.WriteJSON(f)
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.handleDisconnect(conn, err)
			return
		}

		if f.ID != "" {
			t.mu.Lock()
			ch, ok := t.pending[f.ID]
			t.mu.Unlock()
			if ok {
				ch <- f
			}
			continue
		}

		t.dispatchEvent(f)
	}
}

func (t *Transport) dispatchEvent(f frame) {
	switch f.Event {
	case EventNewMessage:
		var msg entity.Message
		if err := json.Unmarshal(f.Data, &msg); err == nil && t.handlers.OnNewMessage != nil {
			t.handlers.OnNewMessage(msg)
		}
	case EventMessageUpdated:
		var msg entity.Message
		if err := json.Unmarshal(f.Data, &msg); err == nil && t.handlers.OnMessageUpdated != nil {
			t.handlers.OnMessageUpdated(msg)
		}
	case EventMessageDeleted:
		var p MessageDeletedPayload
		if err := json.Unmarshal(f.Data, &p); err == nil && t.handlers.OnMessageDeleted != nil {
			t.handlers.OnMessageDeleted(p.ConversationID, p.MessageID)
		}
	case EventTypingStatus:
		var status entity.TypingStatus
		if err := json.Unmarshal(f.Data, &status); err == nil && t.handlers.OnTypingStatus != nil {
			t.handlers.OnTypingStatus(status)
		}
	case EventUserOnlineStatus:
		var p PresencePayload
		if err := json.Unmarshal(f.Data, &p); err == nil && t.handlers.OnPresenceChange != nil {
			t.handlers.OnPresenceChange(p.UserID, p.IsOnline)
		}
	case EventConversationUpdated:
		var conv entity.Conversation
		if err := json.Unmarshal(f.Data, &conv); err == nil && t.handlers.OnConversationUpdated != nil {
			t.handlers.OnConversationUpdated(conv)
		}
	case EventFileUploadProgress:
		var p UploadProgressPayload
		if err := json.Unmarshal(f.Data, &p); err == nil && t.handlers.OnUploadProgress != nil {
			t.handlers.OnUploadProgress(p.MessageID, p.Progress)
		}
	default:
		logger.Debug("transport: unknown event %q", f.Event)
	}
}

func (t *Transport) handleDisconnect(conn *websocket.Conn, cause error) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	closed := t.closed
	identity := t.identity
	for id, ch := range t.pending {
		delete(t.pending, id)
		ch <- frame{Success: false, Error: "connection lost"}
	}
	t.mu.Unlock()

	conn.Close()
	t.notifyConnection("disconnected")

	if closed {
		return
	}

	logger.Warn("transport: connection lost: %v", cause)
	if err := t.Connect(context.Background(), identity); err != nil {
		logger.Error("transport: reconnect failed: %v", err)
	}
}

func (t *Transport) notifyConnection(status string) {
	if t.handlers.OnConnectionChange != nil {
		t.handlers.OnConnectionChange(status)
	}
}

// Close shuts the connection down without triggering reconnection.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return conn.Close()
	}
	return nil
}
