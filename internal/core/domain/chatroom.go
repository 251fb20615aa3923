package domain

import (
	"errors"
	"time"
)

// RoomType distinguishes one-to-one conversations from named groups.
type RoomType string

const (
	RoomDirect RoomType = "direct"
	RoomGroup  RoomType = "group"
)

var ErrInvalidRequest = errors.New("invalid request")
var ErrRoomNotFound = errors.New("room not found")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")

// Chatroom is a conversation with a fixed member set. A direct room has
// exactly two distinct members and no name; a group room has a name and an
// optional admin set. Membership is immutable after creation.
type Chatroom struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Type      RoomType  `json:"type" bson:"type"`
	Members   []string  `json:"members" bson:"members"`
	Admins    []string  `json:"admins" bson:"admins"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasMember reports whether userID belongs to the room.
func (r *Chatroom) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}
