package state

import (
	"strings"
	"sync"
	"time"

	"recyclex/internal/domain/entity"
)

const (
	ConnectionConnecting   = "connecting"
	ConnectionConnected    = "connected"
	ConnectionDisconnected = "disconnected"
	ConnectionError        = "error"
)

// ChatStore is the in-memory normalized store of conversations, messages,
// unread counts, typing statuses and the search filter. Every mutator takes
// the store lock, so mutations are applied atomically one at a time; message
// updates for a given conversation land in dispatch order.
type ChatStore struct {
	mu sync.Mutex

	connectionStatus string
	conversations    []entity.Conversation
	activeID         string
	messages         map[string][]entity.Message
	unreadCounts     map[string]int
	typingStatuses   []entity.TypingStatus
	searchQuery      string
	flaggedMessages  map[string]bool
	archived         map[string]bool
	uploadProgress   map[string]int
	loading          bool
	lastError        string
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		connectionStatus: ConnectionDisconnected,
		messages:         make(map[string][]entity.Message),
		unreadCounts:     make(map[string]int),
		flaggedMessages:  make(map[string]bool),
		archived:         make(map[string]bool),
		uploadProgress:   make(map[string]int),
	}
}

func (s *ChatStore) SetConnectionStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectionStatus = status
}

func (s *ChatStore) ConnectionStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectionStatus
}

func (s *ChatStore) IsConnected() bool {
	return s.ConnectionStatus() == ConnectionConnected
}

// UpsertConversation merges by id; unknown conversations are added to the
// front of the list.
func (s *ChatStore) UpsertConversation(conv entity.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.conversations {
		if s.conversations[i].ID == conv.ID {
			s.conversations[i] = conv
			return
		}
	}
	s.conversations = append([]entity.Conversation{conv}, s.conversations...)
}

func (s *ChatStore) SetConversations(convs []entity.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append([]entity.Conversation(nil), convs...)
}

func (s *ChatStore) Conversations() []entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Conversation(nil), s.conversations...)
}

func (s *ChatStore) Conversation(id string) (entity.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return entity.Conversation{}, false
}

// SetActiveConversation marks a conversation open and zeroes its unread
// counter. Passing an empty id deactivates without touching counters.
func (s *ChatStore) SetActiveConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	if id != "" {
		s.unreadCounts[id] = 0
	}
}

func (s *ChatStore) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// AddMessage upserts a message by id. A duplicate id replaces the existing
// entry in place; status only moves forward on the replace. A genuinely new
// message bumps the unread counter unless its conversation is active, and
// refreshes the conversation's last-message reference.
func (s *ChatStore) AddMessage(msg entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[msg.ConversationID]
	for i := range list {
		if list[i].ID == msg.ID {
			if !entity.MessageStatusAdvances(list[i].Status, msg.Status) {
				msg.Status = list[i].Status
			}
			list[i] = msg
			return
		}
	}

	s.messages[msg.ConversationID] = append(list, msg)

	if s.activeID != msg.ConversationID {
		s.unreadCounts[msg.ConversationID]++
	}

	for i := range s.conversations {
		if s.conversations[i].ID == msg.ConversationID {
			m := msg
			s.conversations[i].LastMessage = &m
			s.conversations[i].LastActivity = msg.Timestamp
			break
		}
	}
}

// RemoveMessage deletes a message outright. Used for user-initiated removal
// of failed sends and for server-pushed deletions.
func (s *ChatStore) RemoveMessage(conversationID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[conversationID]
	for i := range list {
		if list[i].ID == messageID {
			s.messages[conversationID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (s *ChatStore) Messages(conversationID string) []entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Message(nil), s.messages[conversationID]...)
}

func (s *ChatStore) Message(conversationID, messageID string) (entity.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[conversationID] {
		if m.ID == messageID {
			return m, true
		}
	}
	return entity.Message{}, false
}

// PrependMessages inserts an older page of history before the current list,
// skipping ids already present.
func (s *ChatStore) PrependMessages(conversationID string, msgs []entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.messages[conversationID]))
	for _, m := range s.messages[conversationID] {
		existing[m.ID] = true
	}

	var fresh []entity.Message
	for _, m := range msgs {
		if !existing[m.ID] {
			fresh = append(fresh, m)
		}
	}
	s.messages[conversationID] = append(fresh, s.messages[conversationID]...)
}

func (s *ChatStore) MarkMessageRead(conversationID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[conversationID]
	for i := range list {
		if list[i].ID == messageID {
			if entity.MessageStatusAdvances(list[i].Status, entity.MessageStatusRead) {
				list[i].Status = entity.MessageStatusRead
			}
			return
		}
	}
}

func (s *ChatStore) UnreadCount(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCounts[conversationID]
}

// SetTypingStatus adds an entry when IsTyping is true and removes it entirely
// when false.
func (s *ChatStore) SetTypingStatus(status entity.TypingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.typingStatuses {
		if t.ConversationID == status.ConversationID && t.UserID == status.UserID {
			idx = i
			break
		}
	}

	if status.IsTyping {
		if idx >= 0 {
			s.typingStatuses[idx] = status
		} else {
			s.typingStatuses = append(s.typingStatuses, status)
		}
	} else if idx >= 0 {
		s.typingStatuses = append(s.typingStatuses[:idx], s.typingStatuses[idx+1:]...)
	}
}

func (s *ChatStore) ClearTypingStatuses(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []entity.TypingStatus
	for _, t := range s.typingStatuses {
		if t.ConversationID != conversationID {
			kept = append(kept, t)
		}
	}
	s.typingStatuses = kept
}

func (s *ChatStore) TypingUsers(conversationID string) []entity.TypingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.TypingStatus
	for _, t := range s.typingStatuses {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	return out
}

func (s *ChatStore) FlagMessage(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flaggedMessages[messageID] = true
}

func (s *ChatStore) UnflagMessage(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flaggedMessages, messageID)
}

func (s *ChatStore) IsFlagged(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flaggedMessages[messageID]
}

// ArchiveConversation is set membership, not deletion; the conversation and
// its messages stay in the store.
func (s *ChatStore) ArchiveConversation(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived[conversationID] = true
}

func (s *ChatStore) UnarchiveConversation(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.archived, conversationID)
}

func (s *ChatStore) IsArchived(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archived[conversationID]
}

func (s *ChatStore) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
}

// FilteredConversations applies the current search query: case-insensitive
// substring match over name, description and last message content. An empty
// query returns everything.
func (s *ChatStore) FilteredConversations() []entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(strings.TrimSpace(s.searchQuery))
	if query == "" {
		return append([]entity.Conversation(nil), s.conversations...)
	}

	var out []entity.Conversation
	for _, c := range s.conversations {
		if strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(strings.ToLower(c.Description), query) ||
			(c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Content), query)) {
			out = append(out, c)
		}
	}
	return out
}

func (s *ChatStore) SetUploadProgress(messageID string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadProgress[messageID] = progress
}

func (s *ChatStore) RemoveUploadProgress(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploadProgress, messageID)
}

func (s *ChatStore) UploadProgress(messageID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.uploadProgress[messageID]
	return p, ok
}

func (s *ChatStore) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

func (s *ChatStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *ChatStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *ChatStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// TouchActivity refreshes a conversation's last-activity timestamp without
// going through AddMessage, e.g. for presence changes.
func (s *ChatStore) TouchActivity(conversationID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == conversationID {
			s.conversations[i].LastActivity = at
			return
		}
	}
}
