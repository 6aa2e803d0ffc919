package httpapi

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/push"
	"github.com/wtfmahe/PeeP/internal/services"
)

type AuthService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password, platform string) (*services.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	SignOutAll(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*services.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*services.TokenClaims, error)
	RegisterPushToken(ctx context.Context, accountID uuid.UUID, token, platform string) error
	ClearPushToken(ctx context.Context, accountID uuid.UUID) error
}

type FriendService interface {
	SendRequest(ctx context.Context, userID uuid.UUID, username string) (*models.Friendship, error)
	Accept(ctx context.Context, userID, requestID uuid.UUID) error
	Reject(ctx context.Context, userID, requestID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithStatus, error)
	PendingRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error)
}

type PushRelay interface {
	NotifyPeep(ctx context.Context, p push.Payload) (json.RawMessage, error)
}

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(key string) bool
}
