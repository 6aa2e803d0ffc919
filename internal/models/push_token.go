package models

import (
	"time"

	"github.com/google/uuid"
)

type PushToken struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	Platform  string    `json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}
