package realtime

import (
	"context"
	"iter"
	"sync"
)

// Feed publishes changes and hands out filtered subscriptions.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context, filter Filter) (*Subscription, error)
}

// Subscription is one open change feed. It stays open until Close is called
// or the context passed to Subscribe is done.
type Subscription struct {
	filter  Filter
	changes <-chan Change
	done    chan struct{}
	once    sync.Once
	release func() error
	err     error
}

func newSubscription(filter Filter, changes <-chan Change, release func() error) *Subscription {
	return &Subscription{
		filter:  filter,
		changes: changes,
		done:    make(chan struct{}),
		release: release,
	}
}

// All yields changes in arrival order until the subscription is closed or
// the consumer stops ranging. Buffered changes are dropped once Close has
// been called.
func (s *Subscription) All() iter.Seq[Change] {
	return func(yield func(Change) bool) {
		for {
			select {
			case <-s.done:
				return
			case c, ok := <-s.changes:
				if !ok || s.closed() {
					return
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

func (s *Subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close stops delivery and releases the underlying feed. Safe to call more
// than once and from any goroutine.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}

// closeOnCancel ties the subscription's lifetime to ctx.
func (s *Subscription) closeOnCancel(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
}
