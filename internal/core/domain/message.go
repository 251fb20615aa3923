package domain

import "time"

// MessageTypeText is the default message type tag. Other tags may appear in
// the future (attachments, system notices); consumers ignore unknown tags.
const MessageTypeText = "text"

// Message is an immutable chat message. Ordering key is CreatedAt; ties are
// broken by identifier (ObjectIDs are monotonic within one process).
type Message struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Content   string    `json:"content" bson:"content"`
	Type      string    `json:"type" bson:"type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"-" bson:"updated_at"`
}
