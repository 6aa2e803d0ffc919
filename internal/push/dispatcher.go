package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/realtime"
)

// Dispatcher relays every new peep to the push service as it is inserted.
type Dispatcher struct {
	feed   realtime.Feed
	relay  *Relay
	logger *slog.Logger
}

func NewDispatcher(feed realtime.Feed, relay *Relay, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{feed: feed, relay: relay, logger: logger}
}

// Run blocks until ctx is done. Failed deliveries are logged and skipped.
func (d *Dispatcher) Run(ctx context.Context) error {
	sub, err := d.feed.Subscribe(ctx, realtime.Filter{Table: backend.PeepTable, Type: realtime.Insert})
	if err != nil {
		return fmt.Errorf("failed to subscribe to peeps: %w", err)
	}
	defer sub.Close()

	d.logger.Info("push dispatcher started")
	for change := range sub.All() {
		var event models.PeepEvent
		if err := change.Decode(&event); err != nil {
			d.logger.Warn("ignoring undecodable peep", "error", err)
			continue
		}
		d.dispatch(ctx, event)
	}
	d.logger.Info("push dispatcher stopped")
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event models.PeepEvent) {
	_, err := d.relay.NotifyPeep(ctx, Payload{
		FromUserID:   event.FromUserID,
		ToUserID:     event.ToUserID,
		FriendlyName: event.FriendlyName,
	})
	switch {
	case err == nil:
		d.logger.Debug("peep pushed", "peep_id", event.ID, "to_user_id", event.ToUserID)
	case errors.Is(err, ErrNoPushToken):
		d.logger.Info("peep not pushed, no token", "to_user_id", event.ToUserID)
	case ctx.Err() != nil:
	default:
		d.logger.Error("peep push failed", "peep_id", event.ID, "error", err)
	}
}
