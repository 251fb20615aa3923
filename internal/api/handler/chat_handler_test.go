package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatmind/chat-api/internal/core/domain"
	"github.com/chatmind/chat-api/internal/core/ports"
)

type stubChatService struct {
	directRoom *domain.Chatroom
	groupRoom  *domain.Chatroom
	rooms      []*domain.Chatroom
	sendResult *ports.SendMessageResult
	msgs       []*domain.Message
	err        error

	lastSend      ports.SendMessageInput
	lastListLimit int64
}

func (s *stubChatService) CreateDirectRoom(_ context.Context, _, _ string) (*domain.Chatroom, error) {
	return s.directRoom, s.err
}

func (s *stubChatService) CreateGroupRoom(_ context.Context, _ ports.CreateGroupRoomInput) (*domain.Chatroom, error) {
	return s.groupRoom, s.err
}

func (s *stubChatService) ListRoomsForUser(_ context.Context, _ string) ([]*domain.Chatroom, error) {
	return s.rooms, s.err
}

func (s *stubChatService) SendMessage(_ context.Context, input ports.SendMessageInput) (*ports.SendMessageResult, error) {
	s.lastSend = input
	return s.sendResult, s.err
}

func (s *stubChatService) ListMessages(_ context.Context, _ string, limit int64) ([]*domain.Message, error) {
	s.lastListLimit = limit
	return s.msgs, s.err
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestChatHandler_CreateDirect(t *testing.T) {
	svc := &stubChatService{directRoom: &domain.Chatroom{ID: "room-1", Type: domain.RoomDirect}}
	h := NewChatHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/chats/direct",
		`{"user_id":"u1","other_user_id":"u2"}`)
	if err := h.CreateDirect(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp createRoomResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RoomID != "room-1" {
		t.Fatalf("unexpected room id: %s", resp.RoomID)
	}
}

func TestChatHandler_CreateDirect_MissingField(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodPost, "/chats/direct", `{"user_id":"u1"}`)
	err := h.CreateDirect(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected a 400 HTTPError, got %v", err)
	}
}

func TestChatHandler_CreateGroup(t *testing.T) {
	svc := &stubChatService{groupRoom: &domain.Chatroom{ID: "room-2", Type: domain.RoomGroup}}
	h := NewChatHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/chats/group",
		`{"name":"Team","member_ids":["u1","u2"]}`)
	if err := h.CreateGroup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestChatHandler_CreateGroup_EmptyMembers(t *testing.T) {
	h := NewChatHandler(&stubChatService{})

	c, _ := newTestContext(t, http.MethodPost, "/chats/group",
		`{"name":"Team","member_ids":[]}`)
	err := h.CreateGroup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected a 400 HTTPError, got %v", err)
	}
}

func TestChatHandler_ListRooms(t *testing.T) {
	svc := &stubChatService{rooms: []*domain.Chatroom{
		{ID: "room-1", Type: domain.RoomDirect, Members: []string{"u1", "u2"}, Admins: []string{}},
		{ID: "room-2", Name: "Team", Type: domain.RoomGroup, Members: []string{"u1", "u3"}, Admins: []string{}},
	}}
	h := NewChatHandler(svc)

	c, rec := newTestContext(t, http.MethodGet, "/chats/u1", "")
	c.SetParamNames("user_id")
	c.SetParamValues("u1")
	if err := h.ListRooms(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listRoomsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(resp.Rooms))
	}
	if resp.Rooms[0].ID != "room-1" || resp.Rooms[1].Name != "Team" {
		t.Fatalf("unexpected rooms: %+v", resp.Rooms)
	}
}

func TestChatHandler_SendMessage(t *testing.T) {
	svc := &stubChatService{sendResult: &ports.SendMessageResult{
		Message:  &domain.Message{ID: "msg-1", RoomID: "room-1", SenderID: "u1", Content: "hi"},
		RoomType: domain.RoomDirect,
	}}
	h := NewChatHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/messages",
		`{"room_id":"room-1","sender_id":"u1","content":"hi"}`)
	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastSend.RoomID != "room-1" || svc.lastSend.Content != "hi" {
		t.Fatalf("service saw unexpected input: %+v", svc.lastSend)
	}

	var resp sendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MessageID != "msg-1" {
		t.Fatalf("unexpected message id: %s", resp.MessageID)
	}
}

func TestChatHandler_SendMessage_RoomNotFound(t *testing.T) {
	h := NewChatHandler(&stubChatService{err: domain.ErrRoomNotFound})

	c, _ := newTestContext(t, http.MethodPost, "/messages",
		`{"room_id":"missing","sender_id":"u1","content":"hi"}`)
	err := h.SendMessage(c)
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound to propagate, got %v", err)
	}
}

func TestChatHandler_ListMessages(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &stubChatService{msgs: []*domain.Message{
		{ID: "msg-1", RoomID: "room-1", SenderID: "u1", Content: "first", Type: domain.MessageTypeText, CreatedAt: now},
		{ID: "msg-2", RoomID: "room-1", SenderID: "u2", Content: "second", Type: domain.MessageTypeText, CreatedAt: now.Add(time.Second)},
	}}
	h := NewChatHandler(svc)

	c, rec := newTestContext(t, http.MethodGet, "/messages/room-1?limit=25", "")
	c.SetParamNames("room_id")
	c.SetParamValues("room-1")
	if err := h.ListMessages(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastListLimit != 25 {
		t.Fatalf("expected limit 25, service saw %d", svc.lastListLimit)
	}

	var resp listMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].ID != "msg-1" || resp.Messages[1].Content != "second" {
		t.Fatalf("unexpected messages: %+v", resp.Messages)
	}
}
