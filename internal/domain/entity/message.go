package entity

import "time"

const (
	MessageTypeText     = "text"
	MessageTypeFile     = "file"
	MessageTypeVoice    = "voice"
	MessageTypeLocation = "location"
	MessageTypeSystem   = "system"
)

const (
	MessageStatusSending   = "sending"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)

type Message struct {
	ID             string           `json:"id" firestore:"id"`
	ConversationID string           `json:"conversation_id" firestore:"conversationId"`
	SenderID       string           `json:"sender_id" firestore:"senderId"`
	SenderName     string           `json:"sender_name" firestore:"senderName"`
	SenderRole     string           `json:"sender_role" firestore:"senderRole"` // "admin", "agent", "supplier", "buyer"
	Content        string           `json:"content" firestore:"content"`
	Type           string           `json:"type" firestore:"type"`
	Status         string           `json:"status" firestore:"status"`
	Metadata       *MessageMetadata `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	Flagged        bool             `json:"flagged" firestore:"flagged"`
	Timestamp      time.Time        `json:"timestamp" firestore:"timestamp"`
}

// MessageMetadata carries the per-type payload. At most one variant is set,
// matching Message.Type; text and system messages carry none.
type MessageMetadata struct {
	File        *FileMetadata     `json:"file,omitempty" firestore:"file,omitempty"`
	Voice       *VoiceMetadata    `json:"voice,omitempty" firestore:"voice,omitempty"`
	Location    *LocationMetadata `json:"location,omitempty" firestore:"location,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty" firestore:"replyTo,omitempty"`
	Translation *Translation      `json:"translation,omitempty" firestore:"translation,omitempty"`
}

type FileMetadata struct {
	FileName string `json:"file_name" firestore:"fileName"`
	FileSize int64  `json:"file_size" firestore:"fileSize"`
	FileType string `json:"file_type" firestore:"fileType"`
	FileURL  string `json:"file_url" firestore:"fileUrl"`
}

type VoiceMetadata struct {
	FileURL  string `json:"file_url" firestore:"fileUrl"`
	Duration int    `json:"duration" firestore:"duration"` // seconds
}

type LocationMetadata struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
	Address   string  `json:"address,omitempty" firestore:"address,omitempty"`
}

type Translation struct {
	From string `json:"from" firestore:"from"`
	To   string `json:"to" firestore:"to"`
	Text string `json:"text" firestore:"text"`
}

var messageStatusRank = map[string]int{
	MessageStatusSending:   0,
	MessageStatusSent:      1,
	MessageStatusDelivered: 2,
	MessageStatusRead:      3,
}

// MessageStatusAdvances reports whether a status change from old to next is
// allowed. The success path is monotonic (sending -> sent -> delivered -> read)
// and "failed" is terminal.
func MessageStatusAdvances(old, next string) bool {
	if old == MessageStatusFailed {
		return false
	}
	if next == MessageStatusFailed {
		return true
	}
	return messageStatusRank[next] >= messageStatusRank[old]
}
