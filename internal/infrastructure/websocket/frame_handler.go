package websocket

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/gorilla/websocket"

	"recyclex/internal/domain/entity"
	"recyclex/internal/infrastructure/ratelimit"
	"recyclex/internal/usecase"
	"recyclex/pkg/logger"
)

// FileUploader is the slice of the storage client the handler needs.
type FileUploader interface {
	UploadChatFile(ctx context.Context, file *bytes.Reader, fileName, fileType, conversationID string) (string, error)
}

// FrameHandler turns incoming frames into usecase calls, acks the sender and
// fans resulting events out through the hub.
type FrameHandler struct {
	hub      *Hub
	chat     *usecase.ChatUseCase
	uploader FileUploader
	limiter  *ratelimit.FrameLimiter
}

func NewFrameHandler(hub *Hub, chat *usecase.ChatUseCase, uploader FileUploader) *FrameHandler {
	limiter := ratelimit.NewFrameLimiter()
	limiter.StartCleanup()
	return &FrameHandler{
		hub:      hub,
		chat:     chat,
		uploader: uploader,
		limiter:  limiter,
	}
}

// ReadPump reads frames from the client until the connection drops.
func (h *FrameHandler) ReadPump(ctx context.Context, client *Client) {
	defer func() {
		h.hub.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Read error for %s: %v", client.UserID, err)
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.Warn("Malformed frame from %s: %v", client.UserID, err)
			continue
		}

		h.handleFrame(ctx, client, f)
	}
}

func (h *FrameHandler) handleFrame(ctx context.Context, client *Client, f Frame) {
	if ok, wait := h.limiter.Allow(client.UserID, f.Op); !ok {
		logger.Debug("Throttled %q from %s for %v", f.Op, client.UserID, wait)
		if f.ID != "" {
			h.ack(client, Frame{ID: f.ID, Success: false, Error: "rate limit exceeded, slow down"})
		}
		return
	}

	switch f.Op {
	case "typing_start", "typing_stop":
		h.handleTyping(ctx, client, f)
		return
	}

	data, err := h.dispatch(ctx, client, f)
	if f.ID == "" {
		return
	}
	if err != nil {
		h.ack(client, Frame{ID: f.ID, Success: false, Error: err.Error()})
		return
	}
	h.ack(client, Frame{ID: f.ID, Success: true, Data: data})
}

func (h *FrameHandler) dispatch(ctx context.Context, client *Client, f Frame) (json.RawMessage, error) {
	switch f.Op {
	case "send_message":
		return h.handleSendMessage(ctx, client, f.Data)
	case "edit_message":
		return h.handleEditMessage(ctx, client, f.Data)
	case "delete_message":
		return h.handleDeleteMessage(ctx, client, f.Data)
	case "flag_message":
		return h.handleFlagMessage(ctx, client, f.Data)
	case "join_room":
		return h.handleJoinRoom(client, f.Data)
	case "leave_room":
		return h.handleLeaveRoom(client, f.Data)
	case "create_room":
		return h.handleCreateRoom(ctx, client, f.Data)
	case "upload_file":
		return h.handleUploadFile(ctx, client, f.Data)
	case "translate_message":
		return h.handleTranslate(ctx, f.Data)
	case "mark_as_read":
		return h.handleMarkAsRead(ctx, client, f.Data)
	case "mark_conversation_as_read":
		return h.handleMarkConversationAsRead(ctx, client, f.Data)
	default:
		logger.Debug("Unknown op %q from %s", f.Op, client.UserID)
		return nil, errUnknownOp(f.Op)
	}
}

type opError string

func (e opError) Error() string { return string(e) }

func errUnknownOp(op string) error { return opError("unknown operation: " + op) }

func (h *FrameHandler) ack(client *Client, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	client.enqueue(data)
}

func (h *FrameHandler) handleSendMessage(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req entity.Message
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	msg, err := h.chat.SendMessage(ctx, usecase.SendMessageInput{
		ConversationID: req.ConversationID,
		Sender: entity.Participant{
			ID:   client.UserID,
			Name: client.UserName,
			Role: client.Role,
		},
		Content:  req.Content,
		Type:     req.Type,
		Metadata: req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	h.broadcastToConversation(ctx, msg.ConversationID, client.UserID, "new_message", msg)
	return json.Marshal(msg)
}

func (h *FrameHandler) handleEditMessage(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
		NewContent     string `json:"new_content"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	msg, err := h.chat.EditMessage(ctx, req.ConversationID, req.MessageID, client.UserID, req.NewContent)
	if err != nil {
		return nil, err
	}

	h.broadcastToConversation(ctx, req.ConversationID, client.UserID, "message_updated", msg)
	return json.Marshal(msg)
}

func (h *FrameHandler) handleDeleteMessage(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	if err := h.chat.DeleteMessage(ctx, req.ConversationID, req.MessageID, client.UserID, client.Role); err != nil {
		return nil, err
	}

	h.broadcastToConversation(ctx, req.ConversationID, client.UserID, "message_deleted", req)
	return json.Marshal(req)
}

func (h *FrameHandler) handleFlagMessage(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
		Reason         string `json:"reason"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	msg, err := h.chat.FlagMessage(ctx, req.ConversationID, req.MessageID, req.Reason)
	if err != nil {
		return nil, err
	}

	return json.Marshal(msg)
}

func (h *FrameHandler) handleJoinRoom(client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	h.hub.JoinRoom(client, req.RoomID)
	return json.Marshal(req)
}

func (h *FrameHandler) handleLeaveRoom(client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	h.hub.LeaveRoom(client, req.RoomID)
	return json.Marshal(req)
}

func (h *FrameHandler) handleCreateRoom(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
		IsPrivate   bool   `json:"is_private"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	conv, err := h.chat.CreateRoom(ctx, usecase.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		IsPrivate:   req.IsPrivate,
		Creator: entity.Participant{
			ID:   client.UserID,
			Name: client.UserName,
			Role: client.Role,
		},
	})
	if err != nil {
		return nil, err
	}

	h.hub.JoinRoom(client, conv.ID)
	return json.Marshal(conv)
}

func (h *FrameHandler) handleUploadFile(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		FileName       string `json:"file_name"`
		FileSize       int64  `json:"file_size"`
		FileType       string `json:"file_type"`
		FileData       string `json:"file_data"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		return nil, opError("file data is not valid base64")
	}

	url, err := h.uploader.UploadChatFile(ctx, bytes.NewReader(raw), req.FileName, req.FileType, req.ConversationID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]interface{}{
		"file_url":  url,
		"file_name": req.FileName,
		"file_size": int64(len(raw)),
		"file_type": req.FileType,
	})
}

func (h *FrameHandler) handleTranslate(ctx context.Context, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	result, err := h.chat.TranslateMessage(ctx, req.ConversationID, req.MessageID, req.TargetLanguage)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

func (h *FrameHandler) handleMarkAsRead(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	msg, err := h.chat.MarkMessageRead(ctx, req.ConversationID, req.MessageID, client.UserID)
	if err != nil {
		return nil, err
	}

	h.broadcastToConversation(ctx, req.ConversationID, client.UserID, "message_updated", msg)
	return json.Marshal(msg)
}

func (h *FrameHandler) handleMarkConversationAsRead(ctx context.Context, client *Client, data json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	if err := h.chat.MarkConversationRead(ctx, req.ConversationID, client.UserID); err != nil {
		return nil, err
	}

	return json.Marshal(req)
}

func (h *FrameHandler) handleTyping(ctx context.Context, client *Client, f Frame) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(f.Data, &req); err != nil {
		return
	}

	status := entity.TypingStatus{
		ConversationID: req.ConversationID,
		UserID:         client.UserID,
		UserName:       client.UserName,
		IsTyping:       f.Op == "typing_start",
	}

	h.broadcastToConversation(ctx, req.ConversationID, client.UserID, "typing_status", status)
}

// broadcastToConversation routes an event to the audience of a conversation:
// role rooms go to hub room members, everything else to the participant list.
func (h *FrameHandler) broadcastToConversation(ctx context.Context, conversationID, exceptUserID, event string, payload interface{}) {
	conv, err := h.chat.GetConversation(ctx, conversationID)
	if err != nil {
		logger.Warn("Cannot resolve conversation %s for broadcast: %v", conversationID, err)
		return
	}

	if conv.RoomType != "" {
		h.hub.BroadcastToRoom(conv.RoomType, exceptUserID, event, payload)
		return
	}

	ids := make([]string, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		ids = append(ids, p.ID)
	}
	h.hub.BroadcastToUsers(ids, exceptUserID, event, payload)
}
