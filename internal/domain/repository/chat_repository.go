package repository

import (
	"context"

	"recyclex/internal/domain/entity"
	"recyclex/pkg/utils"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *entity.Conversation) error
	GetConversationByID(ctx context.Context, conversationID string) (*entity.Conversation, error)
	GetConversationsByUserID(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.Conversation, error)
	UpdateConversation(ctx context.Context, conv *entity.Conversation) error

	CreateMessage(ctx context.Context, msg *entity.Message) error
	GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	GetMessages(ctx context.Context, conversationID string, pagination *utils.Pagination) ([]entity.Message, error)
	UpdateMessage(ctx context.Context, msg *entity.Message) error
	DeleteMessage(ctx context.Context, conversationID, messageID string) error

	// MarkConversationRead sets every message in the conversation not sent
	// by the user to read.
	MarkConversationRead(ctx context.Context, conversationID, userID string) error
}
