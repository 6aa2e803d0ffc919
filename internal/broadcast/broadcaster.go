// Package broadcast periodically publishes the user's foreground app as
// their status.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/apps"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

const DefaultInterval = 30 * time.Second

type StatusWriter interface {
	UpsertStatus(ctx context.Context, status *models.UserStatus) error
}

// Ticker is the subset of *time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

type Option func(*Broadcaster)

// WithTicker replaces the interval ticker, mainly for tests.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(b *Broadcaster) { b.newTicker = newTicker }
}

func WithClock(now func() time.Time) Option {
	return func(b *Broadcaster) { b.now = now }
}

// Broadcaster runs at most one sampling loop at a time.
type Broadcaster struct {
	sensor    sensor.Sensor
	writer    StatusWriter
	logger    *slog.Logger
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(s sensor.Sensor, writer StatusWriter, logger *slog.Logger, interval time.Duration, opts ...Option) *Broadcaster {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Broadcaster{
		sensor:   s,
		writer:   writer,
		logger:   logger,
		interval: interval,
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{time.NewTicker(d)}
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start replaces any running loop with a new one for userID. The first
// sample is taken immediately.
func (b *Broadcaster) Start(userID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.cancel, b.done = cancel, done

	go b.loop(ctx, userID, done)
}

// Stop cancels the loop and waits for it to exit. A sample that was in
// flight is abandoned. Calling Stop when nothing runs is a no-op.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

func (b *Broadcaster) stopLocked() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
	b.cancel, b.done = nil, nil
}

func (b *Broadcaster) loop(ctx context.Context, userID uuid.UUID, done chan struct{}) {
	defer close(done)

	ticker := b.newTicker(b.interval)
	defer ticker.Stop()

	b.sample(ctx, userID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			b.sample(ctx, userID)
		}
	}
}

func (b *Broadcaster) sample(ctx context.Context, userID uuid.UUID) {
	label, err := b.BroadcastNow(ctx, userID)
	switch {
	case ctx.Err() != nil:
	case err != nil:
		b.logger.Error("status broadcast failed", "user_id", userID, "error", err)
	case label != "":
		b.logger.Debug("status broadcast", "user_id", userID, "friendly_name", label)
	}
}

// BroadcastNow takes one sample and writes it. It returns the label that was
// written, or "" when there was nothing to write because usage access is
// missing or the sensor had no answer.
func (b *Broadcaster) BroadcastNow(ctx context.Context, userID uuid.UUID) (string, error) {
	granted, err := b.sensor.HasPermission(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check usage access: %w", err)
	}
	if !granted {
		return "", nil
	}

	app, ok, err := b.sensor.ForegroundApp(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read foreground app: %w", err)
	}
	if !ok {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	status := &models.UserStatus{
		UserID:       userID,
		CurrentApp:   &app,
		FriendlyName: apps.FriendlyName(app),
		UpdatedAt:    b.now(),
	}
	if err := b.writer.UpsertStatus(ctx, status); err != nil {
		return "", fmt.Errorf("failed to write status: %w", err)
	}
	return status.FriendlyName, nil
}
