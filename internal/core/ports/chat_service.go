package ports

import (
	"context"

	"github.com/chatmind/chat-api/internal/core/domain"
)

// CreateGroupRoomInput carries all data needed to create a group room.
type CreateGroupRoomInput struct {
	Name      string
	MemberIDs []string
	AdminIDs  []string // optional, defaults to empty
}

// SendMessageInput carries all data needed to post a message to a room.
type SendMessageInput struct {
	RoomID   string
	SenderID string
	Content  string
}

// SendMessageResult is returned once the message is durably recorded.
// Fan-out to live subscribers happens after, and independent of, this
// result reaching the caller.
type SendMessageResult struct {
	Message  *domain.Message
	RoomType domain.RoomType
}

// ChatService defines the use-case operations for rooms and messages.
type ChatService interface {
	// CreateDirectRoom returns the direct room between the two users,
	// creating it when absent (idempotent). Fails with ErrInvalidRequest
	// when userA == userB.
	CreateDirectRoom(ctx context.Context, userA, userB string) (*domain.Chatroom, error)
	// CreateGroupRoom creates a group room. Fails with ErrInvalidRequest
	// when the member list is empty.
	CreateGroupRoom(ctx context.Context, input CreateGroupRoomInput) (*domain.Chatroom, error)
	// ListRoomsForUser returns the user's rooms, most recently updated first.
	ListRoomsForUser(ctx context.Context, userID string) ([]*domain.Chatroom, error)
	// SendMessage persists a message and triggers fan-out to the room's
	// live subscribers. Fails with ErrRoomNotFound for unknown rooms and
	// ErrInvalidRequest for empty content; on failure no fan-out happens.
	SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error)
	// ListMessages returns up to limit (capped) most recent messages in
	// ascending chronological order.
	ListMessages(ctx context.Context, roomID string, limit int64) ([]*domain.Message, error)
}

// MessagePublisher triggers fan-out of a newly persisted message to the
// room's live subscribers. Implementations must return without waiting for
// any delivery to complete.
type MessagePublisher interface {
	PublishMessage(msg *domain.Message)
}
