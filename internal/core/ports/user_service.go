package ports

import (
	"context"

	"github.com/chatmind/chat-api/internal/core/domain"
)

// AuthService implements account signup and login.
type AuthService interface {
	// Signup creates an account. Fails with ErrEmailTaken when the email is
	// already registered and ErrInvalidRequest on missing fields.
	Signup(ctx context.Context, name, email, password string) (*domain.User, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// UserService implements profile lookup and mutation.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// SearchUsers matches query against name and email, capped at a hard
	// maximum number of results.
	SearchUsers(ctx context.Context, query string, limit int64) ([]*domain.User, error)
	// UpdateProfile applies a partial profile update and reports whether
	// anything changed. An empty patch is a no-op, not an error.
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (bool, error)
}
