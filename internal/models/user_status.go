package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus is the single row per user describing what they are doing.
type UserStatus struct {
	UserID       uuid.UUID `json:"user_id"`
	CurrentApp   *string   `json:"current_app"`
	FriendlyName string    `json:"friendly_name"`
	UpdatedAt    time.Time `json:"updated_at"`
}
