package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
)

type AccountRepository interface {
	Register(ctx context.Context, account *models.Account, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	FindBetween(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error)
	Accept(ctx context.Context, id, receiverID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error)
}

type StatusRepository interface {
	Upsert(ctx context.Context, status *models.UserStatus) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error)
}

type StatusCache interface {
	Set(ctx context.Context, status *models.UserStatus) error
	Get(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type PeepRepository interface {
	Append(ctx context.Context, peep *models.PeepEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PeepEvent, error)
	LatestForUser(ctx context.Context, userID uuid.UUID) (*models.PeepEvent, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.PeepEvent, error)
}

type PushTokenRepository interface {
	Upsert(ctx context.Context, token *models.PushToken) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PushToken, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error
}
