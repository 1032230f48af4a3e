package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recyclex/internal/domain/entity"
)

func textMessage(id, convID, content string) entity.Message {
	return entity.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       "user-1",
		Content:        content,
		Type:           entity.MessageTypeText,
		Status:         entity.MessageStatusSent,
		Timestamp:      time.Now(),
	}
}

func TestAddMessageIsIdempotentById(t *testing.T) {
	store := NewChatStore()

	msg := textMessage("m1", "c1", "hello")
	store.AddMessage(msg)
	store.AddMessage(msg)
	store.AddMessage(msg)

	assert.Len(t, store.Messages("c1"), 1)
}

func TestAddMessageDuplicateKeepsAdvancedStatus(t *testing.T) {
	store := NewChatStore()

	msg := textMessage("m1", "c1", "hello")
	msg.Status = entity.MessageStatusRead
	store.AddMessage(msg)

	// A re-delivered copy with an older status must not regress the message.
	stale := msg
	stale.Status = entity.MessageStatusSent
	store.AddMessage(stale)

	got, ok := store.Message("c1", "m1")
	assert.True(t, ok)
	assert.Equal(t, entity.MessageStatusRead, got.Status)
}

func TestAddMessageUpdatesContentOnDuplicate(t *testing.T) {
	store := NewChatStore()

	store.AddMessage(textMessage("m1", "c1", "original"))
	store.AddMessage(textMessage("m1", "c1", "edited"))

	got, _ := store.Message("c1", "m1")
	assert.Equal(t, "edited", got.Content)
	assert.Len(t, store.Messages("c1"), 1)
}

func TestUnreadCountSkipsActiveConversation(t *testing.T) {
	store := NewChatStore()
	store.SetActiveConversation("c1")

	store.AddMessage(textMessage("m1", "c1", "seen immediately"))
	store.AddMessage(textMessage("m2", "c2", "waiting"))
	store.AddMessage(textMessage("m3", "c2", "still waiting"))

	assert.Equal(t, 0, store.UnreadCount("c1"))
	assert.Equal(t, 2, store.UnreadCount("c2"))
}

func TestOpeningConversationClearsUnread(t *testing.T) {
	store := NewChatStore()

	store.AddMessage(textMessage("m1", "c2", "one"))
	store.AddMessage(textMessage("m2", "c2", "two"))
	assert.Equal(t, 2, store.UnreadCount("c2"))

	store.SetActiveConversation("c2")
	assert.Equal(t, 0, store.UnreadCount("c2"))

	// Duplicate delivery of an already stored message must not recount.
	store.SetActiveConversation("")
	store.AddMessage(textMessage("m2", "c2", "two"))
	assert.Equal(t, 0, store.UnreadCount("c2"))
}

func TestAddMessageRefreshesConversationPreview(t *testing.T) {
	store := NewChatStore()
	store.SetConversations([]entity.Conversation{{ID: "c1", Name: "Copper scrap"}})

	msg := textMessage("m1", "c1", "price updated")
	store.AddMessage(msg)

	conv, ok := store.Conversation("c1")
	assert.True(t, ok)
	if assert.NotNil(t, conv.LastMessage) {
		assert.Equal(t, "price updated", conv.LastMessage.Content)
	}
	assert.Equal(t, msg.Timestamp, conv.LastActivity)
}

func TestRemoveMessage(t *testing.T) {
	store := NewChatStore()
	store.AddMessage(textMessage("m1", "c1", "keep"))
	store.AddMessage(textMessage("m2", "c1", "drop"))

	store.RemoveMessage("c1", "m2")

	msgs := store.Messages("c1")
	assert.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestPrependMessagesSkipsKnownIds(t *testing.T) {
	store := NewChatStore()
	store.AddMessage(textMessage("m3", "c1", "latest"))

	store.PrependMessages("c1", []entity.Message{
		textMessage("m1", "c1", "oldest"),
		textMessage("m2", "c1", "older"),
		textMessage("m3", "c1", "latest"),
	})

	msgs := store.Messages("c1")
	assert.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestMarkMessageReadNeverRegresses(t *testing.T) {
	store := NewChatStore()

	failed := textMessage("m1", "c1", "oops")
	failed.Status = entity.MessageStatusFailed
	store.AddMessage(failed)

	store.MarkMessageRead("c1", "m1")

	got, _ := store.Message("c1", "m1")
	assert.Equal(t, entity.MessageStatusFailed, got.Status)
}

func TestTypingStatusAddAndRemove(t *testing.T) {
	store := NewChatStore()

	store.SetTypingStatus(entity.TypingStatus{ConversationID: "c1", UserID: "u1", IsTyping: true})
	store.SetTypingStatus(entity.TypingStatus{ConversationID: "c1", UserID: "u2", IsTyping: true})
	// Repeated start from the same user is not a second entry.
	store.SetTypingStatus(entity.TypingStatus{ConversationID: "c1", UserID: "u1", IsTyping: true})
	assert.Len(t, store.TypingUsers("c1"), 2)

	store.SetTypingStatus(entity.TypingStatus{ConversationID: "c1", UserID: "u1", IsTyping: false})
	assert.Len(t, store.TypingUsers("c1"), 1)

	store.ClearTypingStatuses("c1")
	assert.Empty(t, store.TypingUsers("c1"))
}

func TestUpsertConversationMergesById(t *testing.T) {
	store := NewChatStore()

	store.UpsertConversation(entity.Conversation{ID: "c1", Name: "old name"})
	store.UpsertConversation(entity.Conversation{ID: "c1", Name: "new name"})
	store.UpsertConversation(entity.Conversation{ID: "c2", Name: "another"})

	convs := store.Conversations()
	assert.Len(t, convs, 2)
	// New conversations go to the front.
	assert.Equal(t, "c2", convs[0].ID)

	conv, _ := store.Conversation("c1")
	assert.Equal(t, "new name", conv.Name)
}

func TestFilteredConversations(t *testing.T) {
	last := textMessage("m1", "c3", "200kg of HDPE available")
	store := NewChatStore()
	store.SetConversations([]entity.Conversation{
		{ID: "c1", Name: "Copper Buyers"},
		{ID: "c2", Name: "General", Description: "copper and aluminium prices"},
		{ID: "c3", Name: "Plastics", LastMessage: &last},
	})

	store.SetSearchQuery("copper")
	filtered := store.FilteredConversations()
	assert.Len(t, filtered, 2)

	store.SetSearchQuery("hdpe")
	filtered = store.FilteredConversations()
	if assert.Len(t, filtered, 1) {
		assert.Equal(t, "c3", filtered[0].ID)
	}

	store.SetSearchQuery("  ")
	assert.Len(t, store.FilteredConversations(), 3)
}

func TestArchiveIsMembershipNotDeletion(t *testing.T) {
	store := NewChatStore()
	store.SetConversations([]entity.Conversation{{ID: "c1"}})
	store.AddMessage(textMessage("m1", "c1", "kept"))

	store.ArchiveConversation("c1")
	assert.True(t, store.IsArchived("c1"))
	assert.Len(t, store.Conversations(), 1)
	assert.Len(t, store.Messages("c1"), 1)

	store.UnarchiveConversation("c1")
	assert.False(t, store.IsArchived("c1"))
}

func TestUploadProgressLifecycle(t *testing.T) {
	store := NewChatStore()

	store.SetUploadProgress("m1", 40)
	p, ok := store.UploadProgress("m1")
	assert.True(t, ok)
	assert.Equal(t, 40, p)

	store.RemoveUploadProgress("m1")
	_, ok = store.UploadProgress("m1")
	assert.False(t, ok)
}
