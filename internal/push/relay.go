// Package push tells a peeped user about the peep through the Expo push
// service.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/repositories"
)

var ErrNoPushToken = errors.New("no push token for target user")

const (
	peepTitle       = "👀 You were peeped!"
	fallbackName    = "Someone"
	fallbackLabel   = "using your phone"
	notificationTag = "peep"
)

// Payload is the body the relay endpoint accepts.
type Payload struct {
	FromUserID   uuid.UUID `json:"from_user_id"`
	ToUserID     uuid.UUID `json:"to_user_id"`
	FriendlyName string    `json:"friendly_name"`
}

type Relay struct {
	profiles repositories.ProfileRepository
	tokens   repositories.PushTokenRepository
	gateway  Gateway
	logger   *slog.Logger
}

func NewRelay(profiles repositories.ProfileRepository, tokens repositories.PushTokenRepository, gateway Gateway, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{profiles: profiles, tokens: tokens, gateway: gateway, logger: logger}
}

// BuildMessage renders the notification for a peep. Empty name and label
// fall back to neutral wording.
func BuildMessage(token, peeperName string, p Payload) Message {
	if peeperName == "" {
		peeperName = fallbackName
	}
	label := p.FriendlyName
	if label == "" {
		label = fallbackLabel
	}
	return Message{
		To:    token,
		Title: peepTitle,
		Body:  fmt.Sprintf("%s saw you %s", peeperName, label),
		Sound: "default",
		Data: map[string]string{
			"type":         notificationTag,
			"from_user_id": p.FromUserID.String(),
		},
	}
}

// NotifyPeep pushes one notification to the peeped user. ErrNoPushToken
// means the user never registered a device.
func (r *Relay) NotifyPeep(ctx context.Context, p Payload) (json.RawMessage, error) {
	token, err := r.tokens.GetByUserID(ctx, p.ToUserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoPushToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get push token: %w", err)
	}

	var name string
	profile, err := r.profiles.GetByID(ctx, p.FromUserID)
	switch {
	case err == nil:
		name = profile.Username
	case errors.Is(err, repositories.ErrNotFound):
	default:
		r.logger.Warn("peeper lookup failed", "from_user_id", p.FromUserID, "error", err)
	}

	return r.gateway.Send(ctx, BuildMessage(token.Token, name, p))
}
