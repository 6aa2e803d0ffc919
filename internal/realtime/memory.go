package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// MemoryFeed is an in-process Feed. Publish blocks until every matching
// subscriber has buffer room, so nothing is dropped.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*memorySub
}

type memorySub struct {
	sub *Subscription
	ch  chan Change
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]*memorySub)}
}

func (f *MemoryFeed) Publish(ctx context.Context, change Change) error {
	f.mu.RLock()
	targets := make([]*memorySub, 0, len(f.subs))
	for _, s := range f.subs {
		if s.sub.filter.Match(change) {
			targets = append(targets, s)
		}
	}
	f.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.ch <- change:
		case <-s.sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, filter Filter) (*Subscription, error) {
	ch := make(chan Change, subscriberBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.mu.Unlock()

	sub := newSubscription(filter, ch, func() error {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		return nil
	})

	f.mu.Lock()
	f.subs[id] = &memorySub{sub: sub, ch: ch}
	f.mu.Unlock()

	sub.closeOnCancel(ctx)
	return sub, nil
}

// Subscribers is the number of open subscriptions.
func (f *MemoryFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
