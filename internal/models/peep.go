package models

import (
	"time"

	"github.com/google/uuid"
)

// PeepEvent records that FromUserID looked at ToUserID's status. Append only.
type PeepEvent struct {
	ID           uuid.UUID `json:"id"`
	FromUserID   uuid.UUID `json:"from_user_id"`
	ToUserID     uuid.UUID `json:"to_user_id"`
	DetectedApp  *string   `json:"detected_app"`
	FriendlyName string    `json:"friendly_name"`
	CreatedAt    time.Time `json:"created_at"`
}
