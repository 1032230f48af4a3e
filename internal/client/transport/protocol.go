package transport

import "encoding/json"

// Request/ack operations. Each returns a {success, data|error} envelope.
const (
	OpSendMessage        = "send_message"
	OpEditMessage        = "edit_message"
	OpDeleteMessage      = "delete_message"
	OpFlagMessage        = "flag_message"
	OpJoinRoom           = "join_room"
	OpLeaveRoom          = "leave_room"
	OpCreateRoom         = "create_room"
	OpUploadFile         = "upload_file"
	OpTranslateMessage   = "translate_message"
	OpMarkAsRead         = "mark_as_read"
	OpMarkConversationAsRead = "mark_conversation_as_read"
)

// Fire-and-forget operations. No envelope comes back.
const (
	OpTypingStart = "typing_start"
	OpTypingStop  = "typing_stop"
)

// Server-push events.
const (
	EventNewMessage          = "new_message"
	EventMessageUpdated      = "message_updated"
	EventMessageDeleted      = "message_deleted"
	EventTypingStatus        = "typing_status"
	EventUserOnlineStatus    = "user_online_status"
	EventConversationUpdated = "conversation_updated"
	EventFileUploadProgress  = "file_upload_progress"
)

// frame is the single wire shape in both directions. A client request carries
// ID+Op; the matching ack carries the same ID plus Success and Data or Error.
// A server push carries Event and Data, no ID.
type frame struct {
	ID      string          `json:"id,omitempty"`
	Op      string          `json:"op,omitempty"`
	Event   string          `json:"event,omitempty"`
	Success bool            `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type UploadFileRequest struct {
	ConversationID string `json:"conversation_id"`
	FileName       string `json:"file_name"`
	FileSize       int64  `json:"file_size"`
	FileType       string `json:"file_type"`
	FileData       string `json:"file_data"` // base64
}

type UploadFileResult struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

type TranslateRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	TargetLanguage string `json:"target_language"`
}

type TranslateResult struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
}

type RoomRequest struct {
	RoomID string `json:"room_id"`
}

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // "room" or "group"
	IsPrivate   bool   `json:"is_private"`
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id,omitempty"`
}

type PresencePayload struct {
	UserID   string `json:"user_id"`
	IsOnline bool   `json:"is_online"`
}

type UploadProgressPayload struct {
	MessageID string `json:"message_id"`
	Progress  int    `json:"progress"`
}

type MessageDeletedPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// RoleRooms maps a participant role to the channel set it joins on connect.
// Every role joins the common rooms; the mapping is static and deterministic.
var commonRooms = []string{"general", "announcements"}

var roleRooms = map[string][]string{
	"admin":    {"admin", "support"},
	"agent":    {"agents", "support"},
	"supplier": {"suppliers"},
	"buyer":    {"buyers"},
}

func RoomsForRole(role string) []string {
	rooms := append([]string(nil), commonRooms...)
	return append(rooms, roleRooms[role]...)
}
