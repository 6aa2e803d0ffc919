package friends

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
)

type Directory interface {
	AcceptedFriends(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	StatusesFor(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error)
}

// Loader refills a List from the backend.
type Loader struct {
	dir  Directory
	list *List
}

func NewLoader(dir Directory, list *List) *Loader {
	return &Loader{dir: dir, list: list}
}

// Refetch loads every accepted friend with their current status and replaces
// the list. On error the list is left as it was.
func (l *Loader) Refetch(ctx context.Context, userID uuid.UUID) error {
	profiles, err := l.dir.AcceptedFriends(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load friends: %w", err)
	}

	ids := make([]uuid.UUID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	byUser := make(map[uuid.UUID]*models.UserStatus, len(ids))
	if len(ids) > 0 {
		statuses, err := l.dir.StatusesFor(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load friend statuses: %w", err)
		}
		for _, st := range statuses {
			byUser[st.UserID] = st
		}
	}

	friends := make([]models.FriendWithStatus, len(profiles))
	for i, p := range profiles {
		friends[i] = models.FriendWithStatus{Profile: *p, Status: byUser[p.ID]}
	}
	l.list.Replace(friends)
	return nil
}
