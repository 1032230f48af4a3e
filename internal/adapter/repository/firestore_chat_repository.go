package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/pkg/errors"
	"recyclex/pkg/utils"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.LastActivity = now
	conv.SyncParticipantIDs()

	_, err := r.client.Collection("conversations").Doc(conv.ID).Set(ctx, conv)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetConversationByID(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(conversationID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conv, nil
}

func (r *firestoreChatRepository) GetConversationsByUserID(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.Conversation, error) {
	query := r.client.Collection("conversations").
		Where("participantIds", "array-contains", userID).
		OrderBy("lastActivity", firestore.Desc)

	if pagination.Page > 1 {
		query = query.Offset(pagination.Offset())
	}
	query = query.Limit(pagination.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var conversations []entity.Conversation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate conversations", err)
		}

		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			log.Printf("Error converting conversation document: %v", err)
			continue
		}

		conversations = append(conversations, conv)
	}

	if conversations == nil {
		conversations = []entity.Conversation{}
	}

	return conversations, nil
}

func (r *firestoreChatRepository) UpdateConversation(ctx context.Context, conv *entity.Conversation) error {
	conv.UpdatedAt = time.Now()
	conv.SyncParticipantIDs()
	_, err := r.client.Collection("conversations").Doc(conv.ID).Set(ctx, conv)
	if err != nil {
		return errors.Internal("Failed to update conversation", err)
	}
	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, msg *entity.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	_, err := r.client.Collection("conversations").Doc(msg.ConversationID).
		Collection("messages").Doc(msg.ID).Set(ctx, msg)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	doc, err := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var msg entity.Message
	if err := doc.DataTo(&msg); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &msg, nil
}

func (r *firestoreChatRepository) GetMessages(ctx context.Context, conversationID string, pagination *utils.Pagination) ([]entity.Message, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").OrderBy("timestamp", firestore.Desc)

	if pagination.Page > 1 {
		query = query.Offset(pagination.Offset())
	}
	query = query.Limit(pagination.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var msg entity.Message
		if err := doc.DataTo(&msg); err != nil {
			log.Printf("Error converting message document: %v", err)
			continue
		}

		messages = append(messages, msg)
	}

	// Oldest first for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *firestoreChatRepository) UpdateMessage(ctx context.Context, msg *entity.Message) error {
	_, err := r.client.Collection("conversations").Doc(msg.ConversationID).
		Collection("messages").Doc(msg.ID).Set(ctx, msg)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreChatRepository) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	_, err := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").Doc(messageID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

func (r *firestoreChatRepository) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	iter := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").
		Where("status", "in", []string{entity.MessageStatusSent, entity.MessageStatusDelivered}).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Internal("Failed to iterate unread messages", err)
		}

		var msg entity.Message
		if err := doc.DataTo(&msg); err != nil {
			log.Printf("Error converting message document: %v", err)
			continue
		}
		if msg.SenderID == userID {
			continue
		}

		msg.Status = entity.MessageStatusRead
		if _, err := doc.Ref.Set(ctx, msg); err != nil {
			return errors.Internal("Failed to mark message read", err)
		}
	}

	return nil
}
