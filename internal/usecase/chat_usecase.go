package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/internal/domain/service"
	"recyclex/pkg/errors"
	"recyclex/pkg/logger"
	"recyclex/pkg/utils"
)

type ChatUseCase struct {
	chatRepo  repository.ChatRepository
	translate service.TranslateService
}

func NewChatUseCase(chatRepo repository.ChatRepository, translate service.TranslateService) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:  chatRepo,
		translate: translate,
	}
}

type CreateRoomInput struct {
	Name        string
	Description string
	Type        string // "room" or "group"
	RoomType    string
	IsPrivate   bool
	Creator     entity.Participant
}

func (uc *ChatUseCase) CreateRoom(ctx context.Context, input CreateRoomInput) (*entity.Conversation, error) {
	if input.Name == "" {
		return nil, errors.BadRequest("Room name is required", nil)
	}

	convType := input.Type
	if convType == "" {
		convType = "room"
	}

	conv := &entity.Conversation{
		ID:           uuid.New().String(),
		Type:         convType,
		Name:         input.Name,
		Description:  input.Description,
		RoomType:     input.RoomType,
		IsPrivate:    input.IsPrivate,
		Participants: []entity.Participant{input.Creator},
	}

	if err := uc.chatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	logger.Info("Room created: %s (%s)", conv.Name, conv.ID)
	return conv, nil
}

// CreateDirectConversation opens a one-on-one conversation between two users.
func (uc *ChatUseCase) CreateDirectConversation(ctx context.Context, a, b entity.Participant) (*entity.Conversation, error) {
	conv := &entity.Conversation{
		ID:           uuid.New().String(),
		Type:         "direct",
		Name:         a.Name + ", " + b.Name,
		Participants: []entity.Participant{a, b},
		IsPrivate:    true,
	}

	if err := uc.chatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	return conv, nil
}

func (uc *ChatUseCase) GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	return uc.chatRepo.GetConversationByID(ctx, conversationID)
}

func (uc *ChatUseCase) GetConversations(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.Conversation, error) {
	return uc.chatRepo.GetConversationsByUserID(ctx, userID, pagination)
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, conversationID, userID string, pagination *utils.Pagination) ([]entity.Message, error) {
	if _, err := uc.memberConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return uc.chatRepo.GetMessages(ctx, conversationID, pagination)
}

type SendMessageInput struct {
	ConversationID string
	Sender         entity.Participant
	Content        string
	Type           string
	Metadata       *entity.MessageMetadata
}

// SendMessage persists the message as sent and refreshes the conversation's
// last-message snapshot. The returned message carries the authoritative id.
func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	conv, err := uc.memberConversation(ctx, input.ConversationID, input.Sender.ID)
	if err != nil {
		return nil, err
	}

	msgType := input.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}

	msg := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: input.ConversationID,
		SenderID:       input.Sender.ID,
		SenderName:     input.Sender.Name,
		SenderRole:     input.Sender.Role,
		Content:        input.Content,
		Type:           msgType,
		Status:         entity.MessageStatusSent,
		Metadata:       input.Metadata,
		Timestamp:      time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	conv.LastMessage = msg
	conv.LastActivity = msg.Timestamp
	if err := uc.chatRepo.UpdateConversation(ctx, conv); err != nil {
		logger.Warn("Failed to refresh conversation %s after message: %v", conv.ID, err)
	}

	return msg, nil
}

// SendSystemMessage posts an automated notice into a conversation.
func (uc *ChatUseCase) SendSystemMessage(ctx context.Context, conversationID, content string) (*entity.Message, error) {
	msg := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       "system",
		SenderName:     "System",
		Content:        content,
		Type:           entity.MessageTypeSystem,
		Status:         entity.MessageStatusSent,
		Timestamp:      time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func (uc *ChatUseCase) EditMessage(ctx context.Context, conversationID, messageID, userID, newContent string) (*entity.Message, error) {
	msg, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, errors.Forbidden("Only the sender can edit a message", nil)
	}

	msg.Content = newContent
	if err := uc.chatRepo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func (uc *ChatUseCase) DeleteMessage(ctx context.Context, conversationID, messageID, userID, userRole string) error {
	msg, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID && userRole != "admin" {
		return errors.Forbidden("Only the sender or an admin can delete a message", nil)
	}

	return uc.chatRepo.DeleteMessage(ctx, conversationID, messageID)
}

func (uc *ChatUseCase) FlagMessage(ctx context.Context, conversationID, messageID, reason string) (*entity.Message, error) {
	msg, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}

	msg.Flagged = true
	if err := uc.chatRepo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}

	logger.Warn("Message flagged: %s in %s (%s)", messageID, conversationID, reason)
	return msg, nil
}

// MarkMessageRead advances a single message to read. Receipts never move a
// message backwards; the repository stores whatever we hand it, so the check
// lives here.
func (uc *ChatUseCase) MarkMessageRead(ctx context.Context, conversationID, messageID, userID string) (*entity.Message, error) {
	msg, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == userID {
		return msg, nil
	}
	if !entity.MessageStatusAdvances(msg.Status, entity.MessageStatusRead) {
		return msg, nil
	}

	msg.Status = entity.MessageStatusRead
	if err := uc.chatRepo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	if _, err := uc.memberConversation(ctx, conversationID, userID); err != nil {
		return err
	}
	return uc.chatRepo.MarkConversationRead(ctx, conversationID, userID)
}

// TranslateMessage resolves a translation and stores it on the message so
// later readers get it without another round trip.
func (uc *ChatUseCase) TranslateMessage(ctx context.Context, conversationID, messageID, targetLanguage string) (*service.TranslationResult, error) {
	if uc.translate == nil {
		return nil, errors.BadRequest("Translation is not available", nil)
	}

	msg, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}

	result, err := uc.translate.Translate(ctx, msg.Content, targetLanguage)
	if err != nil {
		return nil, errors.Internal("Translation failed", err)
	}

	if msg.Metadata == nil {
		msg.Metadata = &entity.MessageMetadata{}
	}
	msg.Metadata.Translation = &entity.Translation{
		From: result.SourceLanguage,
		To:   targetLanguage,
		Text: result.TranslatedText,
	}
	if err := uc.chatRepo.UpdateMessage(ctx, msg); err != nil {
		logger.Warn("Failed to persist translation for message %s: %v", messageID, err)
	}

	return result, nil
}

func (uc *ChatUseCase) memberConversation(ctx context.Context, conversationID, userID string) (*entity.Conversation, error) {
	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Public rooms are open to everyone.
	if conv.Type != "direct" && !conv.IsPrivate {
		return conv, nil
	}

	for _, p := range conv.Participants {
		if p.ID == userID {
			return conv, nil
		}
	}
	return nil, errors.Forbidden("Not a participant of this conversation", nil)
}
