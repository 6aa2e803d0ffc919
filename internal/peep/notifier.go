package peep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/realtime"
)

const unknownPeeper = "Someone"

type Source interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Subscribe(ctx context.Context, filter realtime.Filter) (*realtime.Subscription, error)
}

// IncomingMessage is the alert text for a peep from name.
func IncomingMessage(name string) string {
	return fmt.Sprintf("👀 %s peeped you!", name)
}

// Notifier raises one alert per peep addressed to the user. Repeated peeps
// are never merged.
type Notifier struct {
	source Source
	show   func(message string)
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	feed   *realtime.Subscription
	done   chan struct{}
}

func NewNotifier(source Source, show func(message string), logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{source: source, show: show, logger: logger}
}

// Start listens for peeps to userID, replacing any earlier listener.
func (n *Notifier) Start(ctx context.Context, userID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	feed, err := n.source.Subscribe(ctx, realtime.Filter{
		Table:  backend.PeepTable,
		Type:   realtime.Insert,
		Column: "to_user_id",
		Value:  userID.String(),
	})
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	n.cancel, n.feed, n.done = cancel, feed, done
	go n.consume(ctx, feed, userID, done)
	return nil
}

func (n *Notifier) consume(ctx context.Context, feed *realtime.Subscription, userID uuid.UUID, done chan struct{}) {
	defer close(done)

	for change := range feed.All() {
		var event models.PeepEvent
		if err := change.Decode(&event); err != nil {
			n.logger.Warn("ignoring undecodable peep", "error", err)
			continue
		}
		if event.ToUserID != userID {
			continue
		}
		name := n.peeperName(ctx, event.FromUserID)
		if ctx.Err() != nil {
			return
		}
		n.show(IncomingMessage(name))
	}
}

func (n *Notifier) peeperName(ctx context.Context, id uuid.UUID) string {
	profile, err := n.source.Profile(ctx, id)
	if err != nil || profile.Username == "" {
		if err != nil {
			n.logger.Debug("peeper lookup failed", "from_user_id", id, "error", err)
		}
		return unknownPeeper
	}
	return profile.Username
}

func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

func (n *Notifier) stopLocked() {
	if n.feed == nil {
		return
	}
	n.cancel()
	n.feed.Close()
	<-n.done
	n.cancel, n.feed, n.done = nil, nil, nil
}
