package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"recyclex/internal/client/state"
	"recyclex/internal/client/transport"
	"recyclex/internal/domain/entity"
	"recyclex/pkg/logger"
)

const defaultTypingIdle = 3 * time.Second

// Transport is the slice of the adapter the chat client needs. Satisfied by
// *transport.Transport.
type Transport interface {
	Send(ctx context.Context, op string, payload interface{}) (json.RawMessage, error)
	Emit(op string, payload interface{}) error
}

// Sender identifies the local user on outgoing messages.
type Sender struct {
	UserID   string
	UserName string
	Role     string
}

// Client drives the optimistic send pipeline and the typing side-channel on
// top of a ChatStore and a Transport.
type Client struct {
	store     *state.ChatStore
	transport Transport
	sender    Sender

	typingIdle time.Duration

	mu           sync.Mutex
	typingTimers map[string]*time.Timer
	typingActive map[string]bool
}

func NewClient(store *state.ChatStore, tr Transport, sender Sender) *Client {
	return &Client{
		store:        store,
		transport:    tr,
		sender:       sender,
		typingIdle:   defaultTypingIdle,
		typingTimers: make(map[string]*time.Timer),
		typingActive: make(map[string]bool),
	}
}

// SetTypingIdle overrides the idle window after which "typing stop" is
// emitted.
func (c *Client) SetTypingIdle(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.typingIdle = d
	}
}

// PushHandlers wires the server-push callbacks of a transport to the store's
// mutation API. Build these before constructing the transport.
func PushHandlers(store *state.ChatStore) transport.Handlers {
	return transport.Handlers{
		OnNewMessage: func(msg entity.Message) {
			store.AddMessage(msg)
		},
		OnMessageUpdated: func(msg entity.Message) {
			store.AddMessage(msg)
		},
		OnMessageDeleted: func(conversationID, messageID string) {
			store.RemoveMessage(conversationID, messageID)
		},
		OnTypingStatus: func(status entity.TypingStatus) {
			store.SetTypingStatus(status)
		},
		OnConversationUpdated: func(conv entity.Conversation) {
			store.UpsertConversation(conv)
		},
		OnUploadProgress: func(messageID string, progress int) {
			store.SetUploadProgress(messageID, progress)
		},
		OnConnectionChange: func(status string) {
			store.SetConnectionStatus(status)
		},
	}
}

// SendText runs the optimistic pipeline for a plain text message.
func (c *Client) SendText(ctx context.Context, conversationID, content string) (entity.Message, error) {
	msg := entity.Message{
		ConversationID: conversationID,
		SenderID:       c.sender.UserID,
		SenderName:     c.sender.UserName,
		SenderRole:     c.sender.Role,
		Content:        content,
		Type:           entity.MessageTypeText,
	}
	return c.send(ctx, msg)
}

// SendFile uploads the payload first, then runs the send pipeline with the
// resolved durable URL in the metadata.
func (c *Client) SendFile(ctx context.Context, conversationID, fileName, fileType string, data []byte) (entity.Message, error) {
	result, err := c.upload(ctx, conversationID, fileName, fileType, data)
	if err != nil {
		return entity.Message{}, err
	}

	msg := entity.Message{
		ConversationID: conversationID,
		SenderID:       c.sender.UserID,
		SenderName:     c.sender.UserName,
		SenderRole:     c.sender.Role,
		Content:        fileName,
		Type:           entity.MessageTypeFile,
		Metadata: &entity.MessageMetadata{
			File: &entity.FileMetadata{
				FileName: result.FileName,
				FileSize: result.FileSize,
				FileType: result.FileType,
				FileURL:  result.FileURL,
			},
		},
	}
	return c.send(ctx, msg)
}

// SendVoice uploads the recording and sends a voice message carrying the
// resolved URL and duration.
func (c *Client) SendVoice(ctx context.Context, conversationID string, data []byte, durationSeconds int) (entity.Message, error) {
	name := fmt.Sprintf("voice_%s.webm", uuid.New().String())
	result, err := c.upload(ctx, conversationID, name, "audio/webm", data)
	if err != nil {
		return entity.Message{}, err
	}

	msg := entity.Message{
		ConversationID: conversationID,
		SenderID:       c.sender.UserID,
		SenderName:     c.sender.UserName,
		SenderRole:     c.sender.Role,
		Content:        "Voice message",
		Type:           entity.MessageTypeVoice,
		Metadata: &entity.MessageMetadata{
			Voice: &entity.VoiceMetadata{
				FileURL:  result.FileURL,
				Duration: durationSeconds,
			},
		},
	}
	return c.send(ctx, msg)
}

func (c *Client) SendLocation(ctx context.Context, conversationID string, latitude, longitude float64, address string) (entity.Message, error) {
	msg := entity.Message{
		ConversationID: conversationID,
		SenderID:       c.sender.UserID,
		SenderName:     c.sender.UserName,
		SenderRole:     c.sender.Role,
		Content:        address,
		Type:           entity.MessageTypeLocation,
		Metadata: &entity.MessageMetadata{
			Location: &entity.LocationMetadata{
				Latitude:  latitude,
				Longitude: longitude,
				Address:   address,
			},
		},
	}
	return c.send(ctx, msg)
}

// send is the pipeline: provisional append with a temporary id, remote send,
// then reconcile by the authoritative server id. On failure the provisional
// entry stays visible as failed for user-initiated retry or removal.
func (c *Client) send(ctx context.Context, msg entity.Message) (entity.Message, error) {
	tempID := "temp_" + uuid.New().String()
	msg.ID = tempID
	msg.Status = entity.MessageStatusSending
	msg.Timestamp = time.Now()

	c.store.AddMessage(msg)

	data, err := c.transport.Send(ctx, transport.OpSendMessage, msg)
	if err != nil {
		msg.Status = entity.MessageStatusFailed
		c.store.AddMessage(msg)
		return msg, err
	}

	var confirmed entity.Message
	if err := json.Unmarshal(data, &confirmed); err != nil {
		msg.Status = entity.MessageStatusFailed
		c.store.AddMessage(msg)
		return msg, fmt.Errorf("malformed send ack: %w", err)
	}

	// The ack carries the authoritative id; drop the provisional entry and
	// upsert by the server id.
	c.store.RemoveMessage(msg.ConversationID, tempID)
	c.store.AddMessage(confirmed)
	return confirmed, nil
}

// RetrySend re-runs the pipeline for a message previously marked failed.
func (c *Client) RetrySend(ctx context.Context, conversationID, messageID string) (entity.Message, error) {
	msg, ok := c.store.Message(conversationID, messageID)
	if !ok {
		return entity.Message{}, fmt.Errorf("message %s not found", messageID)
	}
	if msg.Status != entity.MessageStatusFailed {
		return entity.Message{}, fmt.Errorf("message %s is not failed", messageID)
	}

	c.store.RemoveMessage(conversationID, messageID)
	return c.send(ctx, msg)
}

// RemoveFailed drops a failed message the user chose not to resend.
func (c *Client) RemoveFailed(conversationID, messageID string) error {
	msg, ok := c.store.Message(conversationID, messageID)
	if !ok {
		return fmt.Errorf("message %s not found", messageID)
	}
	if msg.Status != entity.MessageStatusFailed {
		return fmt.Errorf("message %s is not failed", messageID)
	}
	c.store.RemoveMessage(conversationID, messageID)
	return nil
}

func (c *Client) EditMessage(ctx context.Context, conversationID, messageID, newContent string) error {
	payload := map[string]string{
		"conversation_id": conversationID,
		"message_id":      messageID,
		"new_content":     newContent,
	}
	data, err := c.transport.Send(ctx, transport.OpEditMessage, payload)
	if err != nil {
		return err
	}

	var updated entity.Message
	if err := json.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("malformed edit ack: %w", err)
	}
	c.store.AddMessage(updated)
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	payload := map[string]string{"conversation_id": conversationID, "message_id": messageID}
	if _, err := c.transport.Send(ctx, transport.OpDeleteMessage, payload); err != nil {
		return err
	}
	c.store.RemoveMessage(conversationID, messageID)
	return nil
}

func (c *Client) FlagMessage(ctx context.Context, conversationID, messageID, reason string) error {
	payload := map[string]string{
		"conversation_id": conversationID,
		"message_id":      messageID,
		"reason":          reason,
	}
	if _, err := c.transport.Send(ctx, transport.OpFlagMessage, payload); err != nil {
		return err
	}
	c.store.FlagMessage(messageID)
	return nil
}

// TranslateMessage resolves a translation remotely and attaches it to the
// stored message.
func (c *Client) TranslateMessage(ctx context.Context, conversationID, messageID, targetLanguage string) (entity.Translation, error) {
	data, err := c.transport.Send(ctx, transport.OpTranslateMessage, transport.TranslateRequest{
		ConversationID: conversationID,
		MessageID:      messageID,
		TargetLanguage: targetLanguage,
	})
	if err != nil {
		return entity.Translation{}, err
	}

	var result transport.TranslateResult
	if err := json.Unmarshal(data, &result); err != nil {
		return entity.Translation{}, fmt.Errorf("malformed translate ack: %w", err)
	}

	translation := entity.Translation{
		From: result.SourceLanguage,
		To:   targetLanguage,
		Text: result.TranslatedText,
	}

	if msg, ok := c.store.Message(conversationID, messageID); ok {
		if msg.Metadata == nil {
			msg.Metadata = &entity.MessageMetadata{}
		}
		msg.Metadata.Translation = &translation
		c.store.AddMessage(msg)
	}

	return translation, nil
}

// OpenConversation makes a conversation active, zeroes its unread counter and
// tells the server it has been read. Any typing indicator for the previously
// active conversation is stopped.
func (c *Client) OpenConversation(ctx context.Context, conversationID string) error {
	previous := c.store.ActiveConversation()
	if previous != "" && previous != conversationID {
		c.stopTyping(previous)
	}

	c.store.SetActiveConversation(conversationID)

	_, err := c.transport.Send(ctx, transport.OpMarkConversationAsRead, transport.MarkReadPayload{
		ConversationID: conversationID,
	})
	return err
}

func (c *Client) CreateRoom(ctx context.Context, name, description, roomType string, isPrivate bool) (entity.Conversation, error) {
	data, err := c.transport.Send(ctx, transport.OpCreateRoom, transport.CreateRoomRequest{
		Name:        name,
		Description: description,
		Type:        roomType,
		IsPrivate:   isPrivate,
	})
	if err != nil {
		return entity.Conversation{}, err
	}

	var conv entity.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return entity.Conversation{}, fmt.Errorf("malformed create room ack: %w", err)
	}
	c.store.UpsertConversation(conv)
	return conv, nil
}

// ComposeChanged is called on every keystroke of the compose input. A
// non-empty input emits at most one "typing start" and arms the idle timer
// that emits "typing stop"; each keystroke replaces the previous timer so
// only the most recent one is honored.
func (c *Client) ComposeChanged(conversationID, text string) {
	if text == "" {
		c.stopTyping(conversationID)
		return
	}

	c.mu.Lock()
	idle := c.typingIdle
	if !c.typingActive[conversationID] {
		c.typingActive[conversationID] = true
		if err := c.transport.Emit(transport.OpTypingStart, transport.TypingPayload{ConversationID: conversationID}); err != nil {
			logger.Debug("chat: typing start emit failed: %v", err)
		}
	}
	if timer, ok := c.typingTimers[conversationID]; ok {
		timer.Stop()
	}
	c.typingTimers[conversationID] = time.AfterFunc(idle, func() {
		c.stopTyping(conversationID)
	})
	c.mu.Unlock()
}

func (c *Client) stopTyping(conversationID string) {
	c.mu.Lock()
	if timer, ok := c.typingTimers[conversationID]; ok {
		timer.Stop()
		delete(c.typingTimers, conversationID)
	}
	active := c.typingActive[conversationID]
	delete(c.typingActive, conversationID)
	c.mu.Unlock()

	if active {
		if err := c.transport.Emit(transport.OpTypingStop, transport.TypingPayload{ConversationID: conversationID}); err != nil {
			logger.Debug("chat: typing stop emit failed: %v", err)
		}
	}
}

// Close stops all typing timers, emitting stops for conversations still
// marked typing.
func (c *Client) Close() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.typingTimers))
	for id := range c.typingTimers {
		ids = append(ids, id)
	}
	for id := range c.typingActive {
		found := false
		for _, known := range ids {
			if known == id {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.stopTyping(id)
	}
}

func (c *Client) upload(ctx context.Context, conversationID, fileName, fileType string, data []byte) (transport.UploadFileResult, error) {
	ack, err := c.transport.Send(ctx, transport.OpUploadFile, transport.UploadFileRequest{
		ConversationID: conversationID,
		FileName:       fileName,
		FileSize:       int64(len(data)),
		FileType:       fileType,
		FileData:       base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return transport.UploadFileResult{}, err
	}

	var result transport.UploadFileResult
	if err := json.Unmarshal(ack, &result); err != nil {
		return transport.UploadFileResult{}, fmt.Errorf("malformed upload ack: %w", err)
	}
	return result, nil
}
