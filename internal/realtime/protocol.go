package realtime

import "time"

// Frame types carried in the `type` discriminator of every websocket frame.
//
// Client -> server: send_message, mark_read, typing, ping.
// Server -> client: ack, new_message, messages_read, typing, match, pong, error.
const (
	TypeSendMessage  = "send_message"
	TypeMarkRead     = "mark_read"
	TypeTyping       = "typing"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeAck          = "ack"
	TypeNewMessage   = "new_message"
	TypeMessagesRead = "messages_read"
	TypeMatch        = "match"
	TypeError        = "error"
)

// Frame is the JSON envelope for every websocket message, inbound and
// outbound. Fields beyond Type are populated per frame type.
type Frame struct {
	Type     string `json:"type"`
	MatchID  string `json:"match_id,omitempty"`
	Content  string `json:"content,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`

	// outbound only
	UserID  string          `json:"user_id,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
	Match   *MatchPayload   `json:"match,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// MessagePayload is the wire form of a persisted message.
type MessagePayload struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchPayload announces a freshly created match to an online participant.
type MatchPayload struct {
	MatchID     string    `json:"match_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorFrame builds a typed error frame. Authorization and validation
// failures on the socket path are always reported back to the caller, never
// silently dropped.
func ErrorFrame(msg string) Frame {
	return Frame{Type: TypeError, Error: msg}
}
