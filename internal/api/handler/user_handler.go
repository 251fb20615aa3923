package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chatmind/chat-api/internal/core/ports"
)

// Presence reports whether a user currently holds a live connection.
// Implemented by the Redis presence tracker; nil disables the is_online
// field.
type Presence interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type UserHandler struct {
	service  ports.UserService
	presence Presence
}

func NewUserHandler(service ports.UserService, presence Presence) *UserHandler {
	return &UserHandler{service: service, presence: presence}
}

// Search handles GET /users/search?q=&limit=.
//
// @Summary      Search users by name or email
// @Tags         users
// @Produce      json
// @Param        q      query     string  false  "Case-insensitive query"
// @Param        limit  query     int     false  "Max results (capped at 50)"
// @Success      200    {object}  searchUsersResponse
// @Router       /users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	users, err := h.service.SearchUsers(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}

	resp := searchUsersResponse{Users: make([]userResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u, h.online(c, u.ID)))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user's profile
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user, h.online(c, user.ID)))
}

// Update handles PATCH /users/:id.
//
// @Summary      Update profile fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User ID"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  updateProfileResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), ports.ProfilePatch{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateProfileResponse{Updated: updated})
}

// online is best-effort: presence lookup failures render as offline rather
// than failing the request.
func (h *UserHandler) online(c echo.Context, userID string) bool {
	if h.presence == nil {
		return false
	}
	online, err := h.presence.IsOnline(c.Request().Context(), userID)
	if err != nil {
		return false
	}
	return online
}
