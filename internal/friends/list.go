// Package friends keeps the signed-in user's friend list and their live
// statuses.
package friends

import (
	"sync"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
)

// List is the in-memory friend list. Readers always get copies.
type List struct {
	mu      sync.RWMutex
	friends []models.FriendWithStatus
}

func NewList() *List {
	return &List{}
}

// Replace overwrites the whole list, as after a refetch.
func (l *List) Replace(friends []models.FriendWithStatus) {
	cp := make([]models.FriendWithStatus, len(friends))
	for i, f := range friends {
		cp[i] = clone(f)
	}

	l.mu.Lock()
	l.friends = cp
	l.mu.Unlock()
}

// ApplyStatus sets the status of the friend it belongs to. It returns false
// when no friend has that user id.
func (l *List) ApplyStatus(status models.UserStatus) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.friends {
		if l.friends[i].ID == status.UserID {
			st := cloneStatus(status)
			l.friends[i].Status = &st
			return true
		}
	}
	return false
}

func (l *List) Snapshot() []models.FriendWithStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.FriendWithStatus, len(l.friends))
	for i, f := range l.friends {
		out[i] = clone(f)
	}
	return out
}

func (l *List) IDs() []uuid.UUID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]uuid.UUID, len(l.friends))
	for i, f := range l.friends {
		ids[i] = f.ID
	}
	return ids
}

func (l *List) Get(id uuid.UUID) (models.FriendWithStatus, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, f := range l.friends {
		if f.ID == id {
			return clone(f), true
		}
	}
	return models.FriendWithStatus{}, false
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.friends)
}

func clone(f models.FriendWithStatus) models.FriendWithStatus {
	if f.Status != nil {
		st := cloneStatus(*f.Status)
		f.Status = &st
	}
	return f
}

func cloneStatus(st models.UserStatus) models.UserStatus {
	if st.CurrentApp != nil {
		app := *st.CurrentApp
		st.CurrentApp = &app
	}
	return st
}
