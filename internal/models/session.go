package models

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one signed-in client. The JWT carries its ID as jti.
type Session struct {
	ID        string    `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Platform  string    `json:"platform,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
