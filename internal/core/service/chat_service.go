package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chatmind/chat-api/internal/core/domain"
	"github.com/chatmind/chat-api/internal/core/ports"
)

// maxMessageLimit caps how many messages a single list call may return.
const maxMessageLimit = 200

// ChatService orchestrates room creation and message flow: persistence goes
// to the document store, fan-out of new messages to the publisher. Fan-out
// is strictly fire-and-forget: a stalled subscriber never delays the
// sender's request.
type ChatService struct {
	rooms     ports.ChatroomRepository
	messages  ports.MessageRepository
	publisher ports.MessagePublisher
	logger    zerolog.Logger
}

func NewChatService(
	rooms ports.ChatroomRepository,
	messages ports.MessageRepository,
	publisher ports.MessagePublisher,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{rooms: rooms, messages: messages, publisher: publisher, logger: logger}
}

// CreateDirectRoom returns the direct room for the unordered pair
// {userA, userB}, creating it on first use. Calling it again in either
// member order returns the same room.
func (s *ChatService) CreateDirectRoom(ctx context.Context, userA, userB string) (*domain.Chatroom, error) {
	if userA == "" || userB == "" {
		return nil, fmt.Errorf("%w: both user ids are required", domain.ErrInvalidRequest)
	}
	if userA == userB {
		return nil, fmt.Errorf("%w: cannot create chat with self", domain.ErrInvalidRequest)
	}

	existing, err := s.rooms.FindDirect(ctx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrRoomNotFound) {
		return nil, fmt.Errorf("find direct room: %w", err)
	}

	room := &domain.Chatroom{
		Type:    domain.RoomDirect,
		Members: []string{userA, userB},
		Admins:  []string{},
	}
	created, err := s.rooms.Create(ctx, room)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create direct room")
		return nil, err
	}

	s.logger.Info().Str("room_id", created.ID).Msg("direct room created")
	return created, nil
}

// CreateGroupRoom creates a named group room. The admin set defaults to
// empty; a single-member group is allowed.
func (s *ChatService) CreateGroupRoom(ctx context.Context, input ports.CreateGroupRoomInput) (*domain.Chatroom, error) {
	if len(input.MemberIDs) == 0 {
		return nil, fmt.Errorf("%w: members required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: group name required", domain.ErrInvalidRequest)
	}

	admins := input.AdminIDs
	if admins == nil {
		admins = []string{}
	}

	room := &domain.Chatroom{
		Name:    input.Name,
		Type:    domain.RoomGroup,
		Members: input.MemberIDs,
		Admins:  admins,
	}
	created, err := s.rooms.Create(ctx, room)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create group room")
		return nil, err
	}

	s.logger.Info().Str("room_id", created.ID).Int("members", len(created.Members)).Msg("group room created")
	return created, nil
}

// ListRoomsForUser returns every room the user belongs to, most recently
// updated first.
func (s *ChatService) ListRoomsForUser(ctx context.Context, userID string) ([]*domain.Chatroom, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidRequest)
	}
	return s.rooms.ListByMember(ctx, userID)
}

// SendMessage validates the room, persists the message, bumps the room's
// last-activity marker, and hands the message to the publisher. The result
// is returned to the caller regardless of fan-out progress; fan-out never
// runs for a message that failed to persist.
func (s *ChatService) SendMessage(ctx context.Context, input ports.SendMessageInput) (*ports.SendMessageResult, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content required", domain.ErrInvalidRequest)
	}
	if input.SenderID == "" {
		return nil, fmt.Errorf("%w: sender id required", domain.ErrInvalidRequest)
	}

	room, err := s.rooms.FindByID(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		RoomID:   room.ID,
		SenderID: input.SenderID,
		Content:  input.Content,
		Type:     domain.MessageTypeText,
	}
	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", room.ID).Msg("failed to persist message")
		return nil, err
	}

	// Touch failure is not worth failing the send over: the message is
	// already durable.
	if err := s.rooms.Touch(ctx, room.ID); err != nil {
		s.logger.Warn().Err(err).Str("room_id", room.ID).Msg("failed to touch room")
	}

	s.publisher.PublishMessage(created)

	s.logger.Info().
		Str("room_id", room.ID).
		Str("message_id", created.ID).
		Str("sender_id", created.SenderID).
		Msg("message sent")

	return &ports.SendMessageResult{Message: created, RoomType: room.Type}, nil
}

// ListMessages returns up to limit most recent messages of the room in
// ascending chronological order. The limit is capped at maxMessageLimit;
// zero or negative means the cap.
func (s *ChatService) ListMessages(ctx context.Context, roomID string, limit int64) ([]*domain.Message, error) {
	if roomID == "" {
		return nil, fmt.Errorf("%w: room id required", domain.ErrInvalidRequest)
	}
	if limit <= 0 || limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return s.messages.ListRecent(ctx, roomID, limit)
}
