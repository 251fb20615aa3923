package realtime

import "github.com/chatmind/chat-api/internal/core/domain"

// Envelope type tags. Clients must ignore unknown types so new tags can be
// added without breaking old consumers.
const (
	EnvelopeMessage = "message"
	EnvelopeEcho    = "echo"
)

// Envelope is the stable wire shape for every frame pushed to a subscriber:
// {"type": "...", "payload": {...}}.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// MessagePayload is the payload carried by a "message" envelope.
type MessagePayload struct {
	ID       string `json:"id"`
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

// NewMessageEnvelope wraps a persisted message for fan-out.
func NewMessageEnvelope(msg *domain.Message) Envelope {
	return Envelope{
		Type: EnvelopeMessage,
		Payload: MessagePayload{
			ID:       msg.ID,
			RoomID:   msg.RoomID,
			SenderID: msg.SenderID,
			Content:  msg.Content,
		},
	}
}

// NewEchoEnvelope wraps a raw inbound frame echoed back to its sender.
func NewEchoEnvelope(data string) Envelope {
	return Envelope{Type: EnvelopeEcho, Payload: data}
}
