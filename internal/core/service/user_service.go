package service

import (
	"context"
	"fmt"

	"github.com/chatmind/chat-api/internal/core/domain"
	"github.com/chatmind/chat-api/internal/core/ports"
)

// maxSearchLimit caps how many users a single search may return.
const maxSearchLimit = 50

// UserService implements profile lookup, search, and partial updates.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidRequest)
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int64) ([]*domain.User, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.Search(ctx, query, limit)
}

// UpdateProfile applies patch to the user's profile. An all-nil patch is a
// no-op and reports false without touching the store.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ports.ProfilePatch) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("%w: user id required", domain.ErrInvalidRequest)
	}
	if patch.Name == nil && patch.AvatarURL == nil && patch.Bio == nil {
		return false, nil
	}
	return s.repo.UpdateProfile(ctx, userID, patch)
}
