// Package backend is the client-facing view of the shared backend: the
// repositories for reads and writes plus the realtime feed that announces
// every status and peep write.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
)

const (
	StatusTable = "user_status"
	PeepTable   = "peeps"
)

type Deps struct {
	Profiles    repositories.ProfileRepository
	Friendships repositories.FriendshipRepository
	Statuses    repositories.StatusRepository
	// StatusCache is optional.
	StatusCache repositories.StatusCache
	Peeps       repositories.PeepRepository
	Feed        realtime.Feed
	Logger      *slog.Logger
}

type Backend struct {
	profiles    repositories.ProfileRepository
	friendships repositories.FriendshipRepository
	statuses    repositories.StatusRepository
	cache       repositories.StatusCache
	peeps       repositories.PeepRepository
	feed        realtime.Feed
	logger      *slog.Logger
}

func New(deps Deps) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		profiles:    deps.Profiles,
		friendships: deps.Friendships,
		statuses:    deps.Statuses,
		cache:       deps.StatusCache,
		peeps:       deps.Peeps,
		feed:        deps.Feed,
		logger:      logger,
	}
}

// UpsertStatus replaces the user's status row and announces it. Once the row
// is written the call succeeds; cache and publish failures are only logged.
func (b *Backend) UpsertStatus(ctx context.Context, status *models.UserStatus) error {
	if err := b.statuses.Upsert(ctx, status); err != nil {
		return err
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, status); err != nil {
			b.logger.Warn("status cache write failed", "user_id", status.UserID, "error", err)
		}
	}
	b.publish(ctx, StatusTable, realtime.Update, status)
	return nil
}

// LatestStatus returns the user's current status, reading the cache before
// Postgres. ErrNotFound means the user has never broadcast.
func (b *Backend) LatestStatus(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error) {
	if b.cache != nil {
		status, err := b.cache.Get(ctx, userID)
		if err == nil {
			return status, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			b.logger.Warn("status cache read failed", "user_id", userID, "error", err)
		}
	}

	status, err := b.statuses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		if err := b.cache.Set(ctx, status); err != nil {
			b.logger.Warn("status cache write failed", "user_id", userID, "error", err)
		}
	}
	return status, nil
}

// StatusesFor returns the status rows that exist for the given users.
func (b *Backend) StatusesFor(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return b.statuses.ListByUserIDs(ctx, userIDs)
}

// AppendPeep records the peep and announces it to the peeped user.
func (b *Backend) AppendPeep(ctx context.Context, peep *models.PeepEvent) error {
	if err := b.peeps.Append(ctx, peep); err != nil {
		return err
	}
	b.publish(ctx, PeepTable, realtime.Insert, peep)
	return nil
}

func (b *Backend) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return b.profiles.GetByID(ctx, userID)
}

// AcceptedFriends returns every accepted friend, whichever side asked.
func (b *Backend) AcceptedFriends(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	return b.friendships.ListAccepted(ctx, userID)
}

func (b *Backend) Subscribe(ctx context.Context, filter realtime.Filter) (*realtime.Subscription, error) {
	sub, err := b.feed.Subscribe(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", filter, err)
	}
	return sub, nil
}

func (b *Backend) publish(ctx context.Context, table string, typ realtime.EventType, record any) {
	change, err := realtime.NewChange(table, typ, record)
	if err == nil {
		err = b.feed.Publish(ctx, change)
	}
	if err != nil {
		b.logger.Warn("realtime publish failed", "table", table, "type", typ, "error", err)
	}
}
