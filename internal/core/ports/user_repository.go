package ports

import (
	"context"

	"github.com/chatmind/chat-api/internal/core/domain"
)

// ProfilePatch holds the mutable profile fields of a user. Nil fields are
// left untouched.
type ProfilePatch struct {
	Name      *string
	AvatarURL *string
	Bio       *string
}

// UserRepository defines persistence operations on the user collection.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Search matches query case-insensitively against name and email. An
	// empty query returns any users up to limit.
	Search(ctx context.Context, query string, limit int64) ([]*domain.User, error)
	// UpdateProfile applies patch and reports whether a document changed.
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (bool, error)
}
