package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recyclex/internal/client/state"
	"recyclex/internal/client/transport"
	"recyclex/internal/domain/entity"
)

// fakeTransport scripts request/ack exchanges and records fire-and-forget
// emits.
type fakeTransport struct {
	mu      sync.Mutex
	sends   []string
	emits   []string
	onSend  func(op string, payload interface{}) (json.RawMessage, error)
	emitErr error
}

func (f *fakeTransport) Send(_ context.Context, op string, payload interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	f.sends = append(f.sends, op)
	handler := f.onSend
	f.mu.Unlock()

	if handler != nil {
		return handler(op, payload)
	}
	return json.Marshal(map[string]string{})
}

func (f *fakeTransport) Emit(op string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, op)
	return f.emitErr
}

func (f *fakeTransport) emitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.emits...)
}

func newTestChatClient(tr *fakeTransport) (*Client, *state.ChatStore) {
	store := state.NewChatStore()
	client := NewClient(store, tr, Sender{UserID: "u1", UserName: "Nimal", Role: "supplier"})
	return client, store
}

func ackWithServerMessage(serverID string) func(op string, payload interface{}) (json.RawMessage, error) {
	return func(op string, payload interface{}) (json.RawMessage, error) {
		msg, ok := payload.(entity.Message)
		if !ok {
			return json.Marshal(map[string]string{})
		}
		msg.ID = serverID
		msg.Status = entity.MessageStatusSent
		return json.Marshal(msg)
	}
}

func TestSendTextReconcilesTempId(t *testing.T) {
	tr := &fakeTransport{onSend: ackWithServerMessage("srv-1")}
	client, store := newTestChatClient(tr)

	confirmed, err := client.SendText(context.Background(), "c1", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "srv-1", confirmed.ID)
	assert.Equal(t, entity.MessageStatusSent, confirmed.Status)

	// Exactly one message remains and it carries the server id; the
	// provisional temp entry is gone.
	msgs := store.Messages("c1")
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, "srv-1", msgs[0].ID)
		assert.False(t, strings.HasPrefix(msgs[0].ID, "temp_"))
	}
}

func TestFailedSendStaysVisible(t *testing.T) {
	tr := &fakeTransport{onSend: func(string, interface{}) (json.RawMessage, error) {
		return nil, fmt.Errorf("connection lost")
	}}
	client, store := newTestChatClient(tr)

	failed, err := client.SendText(context.Background(), "c1", "hello")
	assert.Error(t, err)
	assert.Equal(t, entity.MessageStatusFailed, failed.Status)

	msgs := store.Messages("c1")
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, entity.MessageStatusFailed, msgs[0].Status)
		assert.Equal(t, "hello", msgs[0].Content)
	}
}

func TestRetrySendReplacesFailedMessage(t *testing.T) {
	tr := &fakeTransport{onSend: func(string, interface{}) (json.RawMessage, error) {
		return nil, fmt.Errorf("connection lost")
	}}
	client, store := newTestChatClient(tr)

	failed, _ := client.SendText(context.Background(), "c1", "hello")

	tr.mu.Lock()
	tr.onSend = ackWithServerMessage("srv-2")
	tr.mu.Unlock()

	confirmed, err := client.RetrySend(context.Background(), "c1", failed.ID)
	assert.NoError(t, err)
	assert.Equal(t, "srv-2", confirmed.ID)

	msgs := store.Messages("c1")
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, "srv-2", msgs[0].ID)
	}
}

func TestRetrySendRejectsNonFailed(t *testing.T) {
	tr := &fakeTransport{onSend: ackWithServerMessage("srv-1")}
	client, _ := newTestChatClient(tr)

	confirmed, _ := client.SendText(context.Background(), "c1", "hello")

	_, err := client.RetrySend(context.Background(), "c1", confirmed.ID)
	assert.Error(t, err)
}

func TestRemoveFailed(t *testing.T) {
	tr := &fakeTransport{onSend: func(string, interface{}) (json.RawMessage, error) {
		return nil, fmt.Errorf("connection lost")
	}}
	client, store := newTestChatClient(tr)

	failed, _ := client.SendText(context.Background(), "c1", "hello")

	assert.NoError(t, client.RemoveFailed("c1", failed.ID))
	assert.Empty(t, store.Messages("c1"))

	assert.Error(t, client.RemoveFailed("c1", failed.ID))
}

func TestSendFileUploadsBeforeSending(t *testing.T) {
	tr := &fakeTransport{}
	tr.onSend = func(op string, payload interface{}) (json.RawMessage, error) {
		switch op {
		case transport.OpUploadFile:
			return json.Marshal(transport.UploadFileResult{
				FileURL:  "https://storage.example/chat/c1/doc.pdf",
				FileName: "doc.pdf",
				FileSize: 3,
				FileType: "application/pdf",
			})
		case transport.OpSendMessage:
			return ackWithServerMessage("srv-1")(op, payload)
		}
		return nil, fmt.Errorf("unexpected op %s", op)
	}
	client, store := newTestChatClient(tr)

	msg, err := client.SendFile(context.Background(), "c1", "doc.pdf", "application/pdf", []byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, entity.MessageTypeFile, msg.Type)
	if assert.NotNil(t, msg.Metadata) && assert.NotNil(t, msg.Metadata.File) {
		assert.Equal(t, "https://storage.example/chat/c1/doc.pdf", msg.Metadata.File.FileURL)
	}

	// Upload happens before the message send.
	assert.Equal(t, []string{transport.OpUploadFile, transport.OpSendMessage}, tr.sends)
	assert.Len(t, store.Messages("c1"), 1)
}

func TestFlagMessageMarksLocally(t *testing.T) {
	tr := &fakeTransport{}
	client, store := newTestChatClient(tr)

	assert.NoError(t, client.FlagMessage(context.Background(), "c1", "m1", "spam"))
	assert.True(t, store.IsFlagged("m1"))
}

func TestTranslateAttachesToStoredMessage(t *testing.T) {
	tr := &fakeTransport{onSend: func(op string, payload interface{}) (json.RawMessage, error) {
		return json.Marshal(transport.TranslateResult{
			TranslatedText: "හෙලෝ",
			SourceLanguage: "en",
		})
	}}
	client, store := newTestChatClient(tr)

	store.AddMessage(entity.Message{ID: "m1", ConversationID: "c1", Content: "hello", Status: entity.MessageStatusSent})

	translation, err := client.TranslateMessage(context.Background(), "c1", "m1", "si")
	assert.NoError(t, err)
	assert.Equal(t, "si", translation.To)
	assert.Equal(t, "en", translation.From)

	msg, _ := store.Message("c1", "m1")
	if assert.NotNil(t, msg.Metadata) && assert.NotNil(t, msg.Metadata.Translation) {
		assert.Equal(t, "හෙලෝ", msg.Metadata.Translation.Text)
	}
}

func TestComposeDebouncesTypingStart(t *testing.T) {
	tr := &fakeTransport{}
	client, _ := newTestChatClient(tr)
	client.SetTypingIdle(40 * time.Millisecond)

	// Rapid keystrokes emit exactly one typing start.
	client.ComposeChanged("c1", "h")
	client.ComposeChanged("c1", "he")
	client.ComposeChanged("c1", "hel")

	assert.Equal(t, []string{transport.OpTypingStart}, tr.emitted())

	// After the idle window a single stop follows.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, []string{transport.OpTypingStart, transport.OpTypingStop}, tr.emitted())

	// Typing again restarts the cycle.
	client.ComposeChanged("c1", "hello")
	assert.Equal(t, []string{transport.OpTypingStart, transport.OpTypingStop, transport.OpTypingStart}, tr.emitted())
	client.Close()
}

func TestClearingComposeStopsTyping(t *testing.T) {
	tr := &fakeTransport{}
	client, _ := newTestChatClient(tr)
	client.SetTypingIdle(time.Minute)

	client.ComposeChanged("c1", "draft")
	client.ComposeChanged("c1", "")

	assert.Equal(t, []string{transport.OpTypingStart, transport.OpTypingStop}, tr.emitted())
}

func TestOpenConversationStopsPreviousTyping(t *testing.T) {
	tr := &fakeTransport{}
	client, store := newTestChatClient(tr)
	client.SetTypingIdle(time.Minute)

	client.ComposeChanged("c1", "half-finished reply")
	assert.NoError(t, client.OpenConversation(context.Background(), "c2"))

	assert.Equal(t, "c2", store.ActiveConversation())
	assert.Equal(t, []string{transport.OpTypingStart, transport.OpTypingStop}, tr.emitted())
	assert.Contains(t, tr.sends, transport.OpMarkConversationAsRead)
}

func TestOpenConversationClearsUnread(t *testing.T) {
	tr := &fakeTransport{}
	client, store := newTestChatClient(tr)

	store.AddMessage(entity.Message{ID: "m1", ConversationID: "c2", Status: entity.MessageStatusSent})
	assert.Equal(t, 1, store.UnreadCount("c2"))

	assert.NoError(t, client.OpenConversation(context.Background(), "c2"))
	assert.Equal(t, 0, store.UnreadCount("c2"))
}

func TestDeleteMessageRemovesLocally(t *testing.T) {
	tr := &fakeTransport{}
	client, store := newTestChatClient(tr)

	store.AddMessage(entity.Message{ID: "m1", ConversationID: "c1", Status: entity.MessageStatusSent})

	assert.NoError(t, client.DeleteMessage(context.Background(), "c1", "m1"))
	assert.Empty(t, store.Messages("c1"))
}

func TestCreateRoomUpserts(t *testing.T) {
	tr := &fakeTransport{onSend: func(op string, payload interface{}) (json.RawMessage, error) {
		return json.Marshal(entity.Conversation{ID: "room-1", Name: "Suppliers"})
	}}
	client, store := newTestChatClient(tr)

	conv, err := client.CreateRoom(context.Background(), "Suppliers", "", "group", false)
	assert.NoError(t, err)
	assert.Equal(t, "room-1", conv.ID)

	_, ok := store.Conversation("room-1")
	assert.True(t, ok)
}
