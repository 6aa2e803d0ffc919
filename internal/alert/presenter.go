// Package alert shows short-lived, auto-dismissing notices to the user.
package alert

import (
	"log/slog"
	"sync"
	"time"
)

const DefaultDuration = 3 * time.Second

// HapticPattern is the vibration played with every alert: wait, buzz,
// pause, buzz.
var HapticPattern = []time.Duration{0, 50 * time.Millisecond, 30 * time.Millisecond, 50 * time.Millisecond}

type Alert struct {
	ID      uint64
	Message string
	Haptic  []time.Duration
	ShownAt time.Time
}

// Sink renders alerts. Show calls it once per alert.
type Sink func(Alert)

// LogSink writes each alert to logger.
func LogSink(logger *slog.Logger) Sink {
	return func(a Alert) {
		ms := make([]int64, len(a.Haptic))
		for i, d := range a.Haptic {
			ms[i] = d.Milliseconds()
		}
		logger.Info("alert", "id", a.ID, "message", a.Message, "haptic_ms", ms)
	}
}

// Presenter holds at most one visible alert. A new alert replaces the
// current one and restarts the dismiss timer.
type Presenter struct {
	duration time.Duration
	sink     Sink
	now      func() time.Time

	mu      sync.Mutex
	seq     uint64
	current *Alert
	timer   *time.Timer
}

func NewPresenter(duration time.Duration, sink Sink) *Presenter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if sink == nil {
		sink = LogSink(slog.Default())
	}
	return &Presenter{duration: duration, sink: sink, now: time.Now}
}

func (p *Presenter) Show(message string) Alert {
	p.mu.Lock()
	p.seq++
	a := Alert{
		ID:      p.seq,
		Message: message,
		Haptic:  append([]time.Duration(nil), HapticPattern...),
		ShownAt: p.now(),
	}
	p.current = &a
	if p.timer != nil {
		p.timer.Stop()
	}
	id := a.ID
	p.timer = time.AfterFunc(p.duration, func() { p.expire(id) })
	p.mu.Unlock()

	p.sink(a)
	return a
}

// Current returns the visible alert, if any.
func (p *Presenter) Current() (Alert, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Alert{}, false
	}
	return *p.current, true
}

// Dismiss hides the current alert early.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

func (p *Presenter) expire(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.ID == id {
		p.clearLocked()
	}
}

func (p *Presenter) clearLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.current = nil
}
