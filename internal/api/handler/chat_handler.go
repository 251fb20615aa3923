package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chatmind/chat-api/internal/api/metrics"
	"github.com/chatmind/chat-api/internal/core/domain"
	"github.com/chatmind/chat-api/internal/core/ports"
)

// ChatHandler handles HTTP requests for rooms and messages.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// CreateDirect handles POST /chats/direct.
//
// @Summary      Create (or fetch) a direct room between two users
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        body  body      createDirectRoomRequest  true  "The two members"
// @Success      200   {object}  createRoomResponse
// @Failure      400   {object}  errorResponse
// @Router       /chats/direct [post]
func (h *ChatHandler) CreateDirect(c echo.Context) error {
	var req createDirectRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room, err := h.service.CreateDirectRoom(c.Request().Context(), req.UserID, req.OtherUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createRoomResponse{RoomID: room.ID})
}

// CreateGroup handles POST /chats/group.
//
// @Summary      Create a group room
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        body  body      createGroupRoomRequest  true  "Group name and members"
// @Success      201   {object}  createRoomResponse
// @Failure      400   {object}  errorResponse
// @Router       /chats/group [post]
func (h *ChatHandler) CreateGroup(c echo.Context) error {
	var req createGroupRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room, err := h.service.CreateGroupRoom(c.Request().Context(), ports.CreateGroupRoomInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
		AdminIDs:  req.AdminIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createRoomResponse{RoomID: room.ID})
}

// ListRooms handles GET /chats/:user_id.
//
// @Summary      List a user's rooms, most recently active first
// @Tags         chats
// @Produce      json
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  listRoomsResponse
// @Router       /chats/{user_id} [get]
func (h *ChatHandler) ListRooms(c echo.Context) error {
	rooms, err := h.service.ListRoomsForUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}

	resp := listRoomsResponse{Rooms: make([]roomResponse, 0, len(rooms))}
	for _, r := range rooms {
		resp.Rooms = append(resp.Rooms, toRoomResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// SendMessage handles POST /messages.
//
// @Summary      Post a message to a room
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        body  body      sendMessageRequest  true  "Message to send"
// @Success      201   {object}  sendMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /messages [post]
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.SendMessage(c.Request().Context(), ports.SendMessageInput{
		RoomID:   req.RoomID,
		SenderID: req.SenderID,
		Content:  req.Content,
	})
	if err != nil {
		return err
	}

	metrics.MessagesSentTotal.WithLabelValues(string(result.RoomType)).Inc()
	return c.JSON(http.StatusCreated, sendMessageResponse{MessageID: result.Message.ID})
}

// ListMessages handles GET /messages/:room_id?limit=.
//
// @Summary      List the most recent messages of a room, oldest first
// @Tags         messages
// @Produce      json
// @Param        room_id  path      string  true   "Room ID"
// @Param        limit    query     int     false  "Max messages (capped at 200)"
// @Success      200      {object}  listMessagesResponse
// @Router       /messages/{room_id} [get]
func (h *ChatHandler) ListMessages(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	msgs, err := h.service.ListMessages(c.Request().Context(), c.Param("room_id"), limit)
	if err != nil {
		return err
	}

	resp := listMessagesResponse{Messages: make([]messageResponse, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:        m.ID,
			RoomID:    m.RoomID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Type:      m.Type,
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func toRoomResponse(r *domain.Chatroom) roomResponse {
	return roomResponse{
		ID:      r.ID,
		Name:    r.Name,
		Type:    string(r.Type),
		Members: r.Members,
		Admins:  r.Admins,
	}
}
