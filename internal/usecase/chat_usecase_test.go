package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/service"
	"recyclex/pkg/errors"
	"recyclex/pkg/utils"
)

type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string]*entity.Message // keyed conversationID/messageID
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string]*entity.Message),
	}
}

func msgKey(conversationID, messageID string) string {
	return conversationID + "/" + messageID
}

func (r *fakeChatRepo) CreateConversation(_ context.Context, conv *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conv
	r.conversations[conv.ID] = &copied
	return nil
}

func (r *fakeChatRepo) GetConversationByID(_ context.Context, conversationID string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeChatRepo) GetConversationsByUserID(_ context.Context, userID string, _ *utils.Pagination) ([]entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Conversation
	for _, conv := range r.conversations {
		for _, p := range conv.Participants {
			if p.ID == userID {
				out = append(out, *conv)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeChatRepo) UpdateConversation(_ context.Context, conv *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conv
	r.conversations[conv.ID] = &copied
	return nil
}

func (r *fakeChatRepo) CreateMessage(_ context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *msg
	r.messages[msgKey(msg.ConversationID, msg.ID)] = &copied
	return nil
}

func (r *fakeChatRepo) GetMessageByID(_ context.Context, conversationID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[msgKey(conversationID, messageID)]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *msg
	return &copied, nil
}

func (r *fakeChatRepo) GetMessages(_ context.Context, conversationID string, _ *utils.Pagination) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Message
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) UpdateMessage(_ context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *msg
	r.messages[msgKey(msg.ConversationID, msg.ID)] = &copied
	return nil
}

func (r *fakeChatRepo) DeleteMessage(_ context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, msgKey(conversationID, messageID))
	return nil
}

func (r *fakeChatRepo) MarkConversationRead(_ context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID && msg.SenderID != userID {
			msg.Status = entity.MessageStatusRead
		}
	}
	return nil
}

type fakeTranslate struct {
	result *service.TranslationResult
	err    error
}

func (f *fakeTranslate) Translate(_ context.Context, _, _ string) (*service.TranslationResult, error) {
	return f.result, f.err
}

var (
	supplierSender = entity.Participant{ID: "u-supplier", Name: "Nimal", Role: "supplier"}
	buyerSender    = entity.Participant{ID: "u-buyer", Name: "Kumari", Role: "buyer"}
)

func newChatFixture(translate service.TranslateService) (*ChatUseCase, *fakeChatRepo) {
	repo := newFakeChatRepo()
	return NewChatUseCase(repo, translate), repo
}

func seedDirectConversation(t *testing.T, uc *ChatUseCase) *entity.Conversation {
	t.Helper()
	conv, err := uc.CreateDirectConversation(context.Background(), supplierSender, buyerSender)
	assert.NoError(t, err)
	return conv
}

func TestSendMessageRefreshesConversation(t *testing.T) {
	uc, _ := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, err := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         supplierSender,
		Content:        "500kg of PET bottles ready for pickup",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, entity.MessageStatusSent, msg.Status)
	assert.Equal(t, entity.MessageTypeText, msg.Type)

	refreshed, _ := uc.GetConversation(context.Background(), conv.ID)
	if assert.NotNil(t, refreshed.LastMessage) {
		assert.Equal(t, msg.ID, refreshed.LastMessage.ID)
	}
	assert.Equal(t, msg.Timestamp, refreshed.LastActivity)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	uc, _ := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	_, err := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         entity.Participant{ID: "u-stranger", Name: "Saman"},
		Content:        "let me in",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestPublicRoomsAreOpenToEveryone(t *testing.T) {
	uc, _ := newChatFixture(nil)

	room, err := uc.CreateRoom(context.Background(), CreateRoomInput{
		Name:    "General",
		Type:    "room",
		Creator: supplierSender,
	})
	assert.NoError(t, err)

	// Not a participant, but the room is public.
	_, err = uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: room.ID,
		Sender:         buyerSender,
		Content:        "hello everyone",
	})
	assert.NoError(t, err)
}

func TestCreateRoomRequiresName(t *testing.T) {
	uc, _ := newChatFixture(nil)

	_, err := uc.CreateRoom(context.Background(), CreateRoomInput{Creator: supplierSender})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestEditMessageIsSenderOnly(t *testing.T) {
	uc, _ := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "400kg available",
	})

	_, err := uc.EditMessage(context.Background(), conv.ID, msg.ID, "u-buyer", "hijacked")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	edited, err := uc.EditMessage(context.Background(), conv.ID, msg.ID, "u-supplier", "450kg available")
	assert.NoError(t, err)
	assert.Equal(t, "450kg available", edited.Content)
}

func TestDeleteMessageSenderOrAdmin(t *testing.T) {
	uc, repo := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "typo",
	})

	err := uc.DeleteMessage(context.Background(), conv.ID, msg.ID, "u-buyer", "buyer")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// An admin may delete anyone's message.
	assert.NoError(t, uc.DeleteMessage(context.Background(), conv.ID, msg.ID, "u-admin", "admin"))
	_, err = repo.GetMessageByID(context.Background(), conv.ID, msg.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMarkMessageReadSkipsOwnAndNeverRegresses(t *testing.T) {
	uc, repo := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "ping",
	})

	// The sender's own receipt is a no-op.
	same, err := uc.MarkMessageRead(context.Background(), conv.ID, msg.ID, "u-supplier")
	assert.NoError(t, err)
	assert.Equal(t, entity.MessageStatusSent, same.Status)

	read, err := uc.MarkMessageRead(context.Background(), conv.ID, msg.ID, "u-buyer")
	assert.NoError(t, err)
	assert.Equal(t, entity.MessageStatusRead, read.Status)

	// A failed message never becomes read.
	failed := &entity.Message{ID: "m-failed", ConversationID: conv.ID, SenderID: "u-supplier", Status: entity.MessageStatusFailed}
	repo.CreateMessage(context.Background(), failed)
	still, err := uc.MarkMessageRead(context.Background(), conv.ID, "m-failed", "u-buyer")
	assert.NoError(t, err)
	assert.Equal(t, entity.MessageStatusFailed, still.Status)
}

func TestMarkConversationRead(t *testing.T) {
	uc, repo := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	theirs, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "theirs",
	})
	mine, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: buyerSender, Content: "mine",
	})

	assert.NoError(t, uc.MarkConversationRead(context.Background(), conv.ID, "u-buyer"))

	got, _ := repo.GetMessageByID(context.Background(), conv.ID, theirs.ID)
	assert.Equal(t, entity.MessageStatusRead, got.Status)

	// Own messages keep their delivery status.
	own, _ := repo.GetMessageByID(context.Background(), conv.ID, mine.ID)
	assert.Equal(t, entity.MessageStatusSent, own.Status)
}

func TestFlagMessage(t *testing.T) {
	uc, repo := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "suspicious offer",
	})

	flagged, err := uc.FlagMessage(context.Background(), conv.ID, msg.ID, "scam")
	assert.NoError(t, err)
	assert.True(t, flagged.Flagged)

	stored, _ := repo.GetMessageByID(context.Background(), conv.ID, msg.ID)
	assert.True(t, stored.Flagged)
}

func TestTranslateMessagePersistsOnMessage(t *testing.T) {
	translate := &fakeTranslate{result: &service.TranslationResult{
		TranslatedText: "හෙලෝ",
		SourceLanguage: "en",
	}}
	uc, repo := newChatFixture(translate)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "hello",
	})

	result, err := uc.TranslateMessage(context.Background(), conv.ID, msg.ID, "si")
	assert.NoError(t, err)
	assert.Equal(t, "හෙලෝ", result.TranslatedText)

	stored, _ := repo.GetMessageByID(context.Background(), conv.ID, msg.ID)
	if assert.NotNil(t, stored.Metadata) && assert.NotNil(t, stored.Metadata.Translation) {
		assert.Equal(t, "si", stored.Metadata.Translation.To)
		assert.Equal(t, "en", stored.Metadata.Translation.From)
		assert.Equal(t, "හෙලෝ", stored.Metadata.Translation.Text)
	}
}

func TestTranslateMessageUnavailable(t *testing.T) {
	uc, _ := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	msg, _ := uc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conv.ID, Sender: supplierSender, Content: "hello",
	})

	_, err := uc.TranslateMessage(context.Background(), conv.ID, msg.ID, "si")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGetMessagesRequiresMembershipOnPrivate(t *testing.T) {
	uc, _ := newChatFixture(nil)
	conv := seedDirectConversation(t, uc)

	_, err := uc.GetMessages(context.Background(), conv.ID, "u-stranger", nil)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.GetMessages(context.Background(), conv.ID, "u-buyer", nil)
	assert.NoError(t, err)
}
