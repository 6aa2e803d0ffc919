// Package peep sends peeps to friends and turns incoming peeps into alerts.
package peep

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/apps"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

var ErrPeepFailed = errors.New("could not peep friend")

type PermissionChecker interface {
	HasPermission(ctx context.Context) (bool, error)
}

type Store interface {
	LatestStatus(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error)
	AppendPeep(ctx context.Context, peep *models.PeepEvent) error
}

type Peeper struct {
	perms PermissionChecker
	store Store
}

func NewPeeper(perms PermissionChecker, store Store) *Peeper {
	return &Peeper{perms: perms, store: store}
}

type Result struct {
	Friend models.Profile
	Event  *models.PeepEvent
}

// Message is the line shown to the peeper, e.g. "bob: Watching Netflix 🎬".
func (r *Result) Message() string {
	return r.Friend.Username + ": " + r.Event.FriendlyName
}

// Peep looks up what friend is doing and records that fromUserID looked.
// Without usage access it fails with sensor.ErrPermissionDenied before
// touching the backend. A friend who never broadcast shows as offline.
func (p *Peeper) Peep(ctx context.Context, fromUserID uuid.UUID, friend models.Profile) (*Result, error) {
	granted, err := p.perms.HasPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check usage access: %w", err)
	}
	if !granted {
		return nil, sensor.ErrPermissionDenied
	}

	event := &models.PeepEvent{
		FromUserID:   fromUserID,
		ToUserID:     friend.ID,
		FriendlyName: apps.OfflineLabel,
	}

	status, err := p.store.LatestStatus(ctx, friend.ID)
	switch {
	case err == nil:
		event.DetectedApp = status.CurrentApp
		if status.FriendlyName != "" {
			event.FriendlyName = status.FriendlyName
		}
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, fmt.Errorf("%w: %w", ErrPeepFailed, err)
	}

	if err := p.store.AppendPeep(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPeepFailed, err)
	}
	return &Result{Friend: friend, Event: event}, nil
}
