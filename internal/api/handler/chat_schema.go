package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createDirectRoomRequest struct {
	UserID      string `json:"user_id"       validate:"required"`
	OtherUserID string `json:"other_user_id" validate:"required"`
}

type createGroupRoomRequest struct {
	Name      string   `json:"name"       validate:"required"`
	MemberIDs []string `json:"member_ids" validate:"required,min=1"`
	AdminIDs  []string `json:"admin_ids"`
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

// Response-only types owned by the transport layer. These are intentionally
// separate from domain types so the JSON contract is not coupled to
// internal service changes.

type roomResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Type    string   `json:"type"`
	Members []string `json:"members"`
	Admins  []string `json:"admins"`
}

type listRoomsResponse struct {
	Rooms []roomResponse `json:"rooms"`
}

type sendMessageRequest struct {
	RoomID   string `json:"room_id"   validate:"required"`
	SenderID string `json:"sender_id" validate:"required"`
	Content  string `json:"content"   validate:"required"`
}

type sendMessageResponse struct {
	MessageID string `json:"message_id"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type listMessagesResponse struct {
	Messages []messageResponse `json:"messages"`
}
