package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wtfmahe/PeeP/internal/logging"
)

const channelPrefix = "realtime:"

// RedisFeed carries changes over Redis pub/sub, one channel per table.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func channelFor(table string) string {
	return channelPrefix + table
}

func (f *RedisFeed) Publish(ctx context.Context, change Change) error {
	if change.CommitTimestamp.IsZero() {
		change.CommitTimestamp = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := f.client.Publish(ctx, channelFor(change.Table), data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, filter Filter) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, channelFor(filter.Table))

	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", filter.Table, err)
	}

	out := make(chan Change, subscriberBuffer)
	sub := newSubscription(filter, out, pubsub.Close)
	sub.closeOnCancel(ctx)

	logger := logging.FromContext(ctx)
	msgs := pubsub.Channel()
	go func() {
		for {
			select {
			case <-sub.done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					logger.Warn("dropping malformed change", "channel", msg.Channel, "error", err)
					continue
				}
				if !filter.Match(change) {
					continue
				}
				select {
				case out <- change:
				case <-sub.done:
					return
				}
			}
		}
	}()

	return sub, nil
}
