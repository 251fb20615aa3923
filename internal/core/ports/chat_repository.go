package ports

import (
	"context"

	"github.com/chatmind/chat-api/internal/core/domain"
)

// ChatroomRepository defines persistence operations on the chatroom
// collection.
type ChatroomRepository interface {
	// Create inserts a new room, stamps timestamps, and returns it with its
	// generated identifier.
	Create(ctx context.Context, room *domain.Chatroom) (*domain.Chatroom, error)
	FindByID(ctx context.Context, roomID string) (*domain.Chatroom, error)
	// FindDirect retrieves the direct room whose member set is exactly
	// {userA, userB}, in either order. Returns domain.ErrRoomNotFound when
	// no such room exists.
	FindDirect(ctx context.Context, userA, userB string) (*domain.Chatroom, error)
	// ListByMember returns all rooms containing userID, most recently
	// updated first.
	ListByMember(ctx context.Context, userID string) ([]*domain.Chatroom, error)
	// Touch bumps the room's updated_at so it sorts to the top of the
	// member's room list.
	Touch(ctx context.Context, roomID string) error
}

// MessageRepository defines persistence operations on the message
// collection.
type MessageRepository interface {
	// Create inserts a new message, stamps its creation timestamp, and
	// returns it with its generated identifier.
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	// ListRecent returns up to limit most recent messages of roomID in
	// ascending chronological order.
	ListRecent(ctx context.Context, roomID string, limit int64) ([]*domain.Message, error)
}
