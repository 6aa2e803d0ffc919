package friends

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/realtime"
)

type Source interface {
	Subscribe(ctx context.Context, filter realtime.Filter) (*realtime.Subscription, error)
}

// Subscription applies live status changes of a fixed friend set to a List.
// At most one feed is open at a time.
type Subscription struct {
	source Source
	list   *List
	logger *slog.Logger

	mu   sync.Mutex
	feed *realtime.Subscription
	done chan struct{}
}

func NewSubscription(source Source, list *List, logger *slog.Logger) *Subscription {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscription{source: source, list: list, logger: logger}
}

// Subscribe closes any previous feed and opens one for friendIDs. Changes for
// users outside friendIDs are ignored. An empty set opens nothing.
func (s *Subscription) Subscribe(ctx context.Context, friendIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
	if len(friendIDs) == 0 {
		return nil
	}

	feed, err := s.source.Subscribe(ctx, realtime.Filter{Table: backend.StatusTable, Type: realtime.AnyEvent})
	if err != nil {
		return err
	}

	ids := make(map[uuid.UUID]struct{}, len(friendIDs))
	for _, id := range friendIDs {
		ids[id] = struct{}{}
	}

	done := make(chan struct{})
	s.feed, s.done = feed, done
	go s.consume(feed, ids, done)
	return nil
}

func (s *Subscription) consume(feed *realtime.Subscription, ids map[uuid.UUID]struct{}, done chan struct{}) {
	defer close(done)

	for change := range feed.All() {
		var status models.UserStatus
		if err := change.Decode(&status); err != nil {
			s.logger.Warn("ignoring undecodable status change", "error", err)
			continue
		}
		if _, ok := ids[status.UserID]; !ok {
			continue
		}
		s.list.ApplyStatus(status)
	}
}

// Active reports whether a feed is open.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed != nil
}

// Unsubscribe closes the feed, if any, and waits for its consumer to finish.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.feed == nil {
		return
	}
	if err := s.feed.Close(); err != nil {
		s.logger.Warn("closing status feed failed", "error", err)
	}
	<-s.done
	s.feed, s.done = nil, nil
}
