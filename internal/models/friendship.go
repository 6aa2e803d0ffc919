package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed request from UserID to FriendID. Once accepted it
// counts for both sides.
type Friendship struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	FriendID  uuid.UUID        `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// FriendRequest is a pending friendship as seen by its receiver.
type FriendRequest struct {
	ID        uuid.UUID `json:"id"`
	From      Profile   `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendWithStatus is a friend's profile plus the last status we saw for them.
type FriendWithStatus struct {
	Profile
	Status *UserStatus `json:"status,omitempty"`
}
