package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatmind/chat-api/internal/core/domain"
	"github.com/chatmind/chat-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubRoomRepo struct {
	rooms     map[string]*domain.Chatroom
	seq       int
	createErr error
	touched   []string
}

func newStubRoomRepo() *stubRoomRepo {
	return &stubRoomRepo{rooms: make(map[string]*domain.Chatroom)}
}

func (r *stubRoomRepo) Create(_ context.Context, room *domain.Chatroom) (*domain.Chatroom, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *room
	clone.ID = fmt.Sprintf("room-%d", r.seq)
	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.rooms[clone.ID] = &clone
	copy := clone
	return &copy, nil
}

func (r *stubRoomRepo) FindByID(_ context.Context, roomID string) (*domain.Chatroom, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	clone := *room
	return &clone, nil
}

// FindDirect applies the same member-pair matching the real Mongo repo does.
func (r *stubRoomRepo) FindDirect(_ context.Context, userA, userB string) (*domain.Chatroom, error) {
	for _, room := range r.rooms {
		if room.Type != domain.RoomDirect || len(room.Members) != 2 {
			continue
		}
		if room.HasMember(userA) && room.HasMember(userB) {
			clone := *room
			return &clone, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (r *stubRoomRepo) ListByMember(_ context.Context, userID string) ([]*domain.Chatroom, error) {
	var matched []*domain.Chatroom
	for _, room := range r.rooms {
		if room.HasMember(userID) {
			clone := *room
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return matched, nil
}

func (r *stubRoomRepo) Touch(_ context.Context, roomID string) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.UpdatedAt = time.Now().UTC()
	r.touched = append(r.touched, roomID)
	return nil
}

type stubMessageRepo struct {
	msgs      []*domain.Message
	seq       int
	createErr error
	lastLimit int64
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *msg
	clone.ID = fmt.Sprintf("msg-%d", r.seq)
	clone.CreatedAt = time.Now().UTC()
	r.msgs = append(r.msgs, &clone)
	copy := clone
	return &copy, nil
}

func (r *stubMessageRepo) ListRecent(_ context.Context, roomID string, limit int64) ([]*domain.Message, error) {
	r.lastLimit = limit
	var matched []*domain.Message
	for _, m := range r.msgs {
		if m.RoomID == roomID {
			clone := *m
			matched = append(matched, &clone)
		}
	}
	if int64(len(matched)) > limit {
		matched = matched[int64(len(matched))-limit:]
	}
	return matched, nil
}

type stubPublisher struct {
	published []*domain.Message
}

func (p *stubPublisher) PublishMessage(msg *domain.Message) {
	p.published = append(p.published, msg)
}

func newChatService() (*ChatService, *stubRoomRepo, *stubMessageRepo, *stubPublisher) {
	rooms := newStubRoomRepo()
	msgs := &stubMessageRepo{}
	pub := &stubPublisher{}
	return NewChatService(rooms, msgs, pub, zerolog.Nop()), rooms, msgs, pub
}

// ---------------------------------------------------------------------------
// Direct rooms
// ---------------------------------------------------------------------------

func TestChatService_CreateDirectRoom_Idempotent(t *testing.T) {
	svc, _, _, _ := newChatService()
	ctx := context.Background()

	first, err := svc.CreateDirectRoom(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Type != domain.RoomDirect {
		t.Fatalf("expected direct room, got %s", first.Type)
	}
	if len(first.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(first.Members))
	}

	// same pair again, reversed order
	second, err := svc.CreateDirectRoom(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same room, got %s and %s", first.ID, second.ID)
	}
}

func TestChatService_CreateDirectRoom_SelfChat(t *testing.T) {
	svc, rooms, _, _ := newChatService()

	_, err := svc.CreateDirectRoom(context.Background(), "u1", "u1")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(rooms.rooms) != 0 {
		t.Fatalf("no room should have been created")
	}
}

func TestChatService_CreateDirectRoom_MissingUser(t *testing.T) {
	svc, _, _, _ := newChatService()

	if _, err := svc.CreateDirectRoom(context.Background(), "", "u2"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Group rooms
// ---------------------------------------------------------------------------

func TestChatService_CreateGroupRoom(t *testing.T) {
	svc, _, _, _ := newChatService()

	room, err := svc.CreateGroupRoom(context.Background(), ports.CreateGroupRoomInput{
		Name:      "Team",
		MemberIDs: []string{"u1", "u2"},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if room.Type != domain.RoomGroup {
		t.Fatalf("expected group room, got %s", room.Type)
	}
	if len(room.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(room.Members))
	}
	if room.Admins == nil || len(room.Admins) != 0 {
		t.Fatalf("admins should default to empty, got %v", room.Admins)
	}
}

func TestChatService_CreateGroupRoom_EmptyMembers(t *testing.T) {
	svc, _, _, _ := newChatService()

	_, err := svc.CreateGroupRoom(context.Background(), ports.CreateGroupRoomInput{Name: "Team"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestChatService_ListRoomsForUser_MostRecentFirst(t *testing.T) {
	svc, rooms, _, _ := newChatService()
	ctx := context.Background()

	older, _ := svc.CreateDirectRoom(ctx, "u1", "u2")
	newer, _ := svc.CreateGroupRoom(ctx, ports.CreateGroupRoomInput{Name: "Team", MemberIDs: []string{"u1", "u3"}})

	// bump the older room's activity so it sorts first
	if err := rooms.Touch(ctx, older.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	listed, err := svc.ListRoomsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(listed))
	}
	if listed[0].ID != older.ID || listed[1].ID != newer.ID {
		t.Fatalf("unexpected order: %s, %s", listed[0].ID, listed[1].ID)
	}
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

func TestChatService_SendMessage(t *testing.T) {
	svc, rooms, msgs, pub := newChatService()
	ctx := context.Background()

	room, _ := svc.CreateDirectRoom(ctx, "u1", "u2")

	result, err := svc.SendMessage(ctx, ports.SendMessageInput{
		RoomID:   room.ID,
		SenderID: "u1",
		Content:  "hi",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.Message.ID == "" {
		t.Fatalf("expected a message id")
	}
	if result.Message.Type != domain.MessageTypeText {
		t.Fatalf("expected text type, got %s", result.Message.Type)
	}
	if result.RoomType != domain.RoomDirect {
		t.Fatalf("unexpected room type: %s", result.RoomType)
	}

	if len(msgs.msgs) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(msgs.msgs))
	}
	if len(pub.published) != 1 || pub.published[0].ID != result.Message.ID {
		t.Fatalf("expected the persisted message to be published")
	}
	if len(rooms.touched) != 1 || rooms.touched[0] != room.ID {
		t.Fatalf("room activity marker not updated")
	}
}

func TestChatService_SendMessage_RoomNotFound(t *testing.T) {
	svc, _, msgs, pub := newChatService()

	_, err := svc.SendMessage(context.Background(), ports.SendMessageInput{
		RoomID:   "missing",
		SenderID: "u1",
		Content:  "hi",
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if len(msgs.msgs) != 0 {
		t.Fatalf("no message should have been persisted")
	}
	if len(pub.published) != 0 {
		t.Fatalf("no fan-out should have happened")
	}
}

func TestChatService_SendMessage_EmptyContent(t *testing.T) {
	svc, _, _, pub := newChatService()

	_, err := svc.SendMessage(context.Background(), ports.SendMessageInput{
		RoomID:   "room-1",
		SenderID: "u1",
		Content:  "   ",
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("no fan-out should have happened")
	}
}

func TestChatService_SendMessage_PersistFailureSkipsFanout(t *testing.T) {
	svc, _, msgs, pub := newChatService()
	ctx := context.Background()

	room, _ := svc.CreateDirectRoom(ctx, "u1", "u2")
	msgs.createErr = errors.New("db down")

	_, err := svc.SendMessage(ctx, ports.SendMessageInput{
		RoomID:   room.ID,
		SenderID: "u1",
		Content:  "hi",
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if len(pub.published) != 0 {
		t.Fatalf("fan-out must never run for an unpersisted message")
	}
}

func TestChatService_ListMessages_CapsLimit(t *testing.T) {
	svc, _, msgs, _ := newChatService()
	ctx := context.Background()

	for _, limit := range []int64{0, -5, 1000} {
		if _, err := svc.ListMessages(ctx, "room-1", limit); err != nil {
			t.Fatalf("list messages: %v", err)
		}
		if msgs.lastLimit != maxMessageLimit {
			t.Fatalf("limit %d: expected cap %d, repo saw %d", limit, maxMessageLimit, msgs.lastLimit)
		}
	}

	if _, err := svc.ListMessages(ctx, "room-1", 10); err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if msgs.lastLimit != 10 {
		t.Fatalf("expected limit 10 to pass through, repo saw %d", msgs.lastLimit)
	}
}
