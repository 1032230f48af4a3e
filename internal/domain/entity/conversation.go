package entity

import "time"

type Conversation struct {
	ID           string        `json:"id" firestore:"id"`
	Type         string        `json:"type" firestore:"type"` // "direct", "room", "group"
	Name         string        `json:"name" firestore:"name"`
	Description  string        `json:"description,omitempty" firestore:"description,omitempty"`
	Participants []Participant `json:"participants" firestore:"participants"`
	// ParticipantIDs duplicates Participants[].ID for array-contains queries.
	ParticipantIDs []string `json:"-" firestore:"participantIds"`
	LastMessage  *Message      `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	UnreadCount  int           `json:"unread_count" firestore:"unreadCount"`
	LastActivity time.Time     `json:"last_activity" firestore:"lastActivity"`
	RoomType     string        `json:"room_type,omitempty" firestore:"roomType,omitempty"` // "general", "admin", "agents", "suppliers", "buyers", "support", "announcements"
	IsPrivate    bool          `json:"is_private" firestore:"isPrivate"`
	CreatedAt    time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time     `json:"updated_at" firestore:"updatedAt"`
}

// SyncParticipantIDs rebuilds the denormalized id list from Participants.
// Call before persisting.
func (c *Conversation) SyncParticipantIDs() {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ID)
	}
	c.ParticipantIDs = ids
}

type Participant struct {
	ID       string     `json:"id" firestore:"id"`
	Name     string     `json:"name" firestore:"name"`
	Role     string     `json:"role" firestore:"role"` // "admin", "agent", "supplier", "buyer"
	IsOnline bool       `json:"is_online" firestore:"isOnline"`
	LastSeen *time.Time `json:"last_seen,omitempty" firestore:"lastSeen,omitempty"`
}

// TypingStatus is ephemeral and never persisted. Presence of an entry in the
// store's typing set means "currently typing"; entries are removed when typing
// stops, not flagged false.
type TypingStatus struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	IsTyping       bool   `json:"is_typing"`
}
