package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

type recordingWriter struct {
	mu       sync.Mutex
	statuses []models.UserStatus
	failNext bool
}

func (w *recordingWriter) UpsertStatus(_ context.Context, status *models.UserStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failNext {
		w.failNext = false
		return errors.New("network down")
	}
	w.statuses = append(w.statuses, *status)
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.statuses)
}

func (w *recordingWriter) last() models.UserStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statuses[len(w.statuses)-1]
}

// manualTicker fires only when the test says so.
type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type tickers struct {
	mu  sync.Mutex
	all []*manualTicker
}

func (ts *tickers) new(time.Duration) Ticker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	ts.all = append(ts.all, t)
	return t
}

func (ts *tickers) latest() *manualTicker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.all[len(ts.all)-1]
}

func (ts *tickers) first() *manualTicker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.all[0]
}

func (ts *tickers) created() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.all)
}

func newTestBroadcaster(s sensor.Sensor, w StatusWriter) (*Broadcaster, *tickers) {
	ts := &tickers{}
	return New(s, w, logging.Discard(), time.Second, WithTicker(ts.new)), ts
}

func TestStart_SamplesImmediatelyAndOnEachTick(t *testing.T) {
	stub := sensor.NewStub(true, "com.spotify.music")
	w := &recordingWriter{}
	b, ts := newTestBroadcaster(stub, w)
	user := uuid.New()

	b.Start(user)
	defer b.Stop()

	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, 5*time.Millisecond)
	got := w.last()
	assert.Equal(t, user, got.UserID)
	assert.Equal(t, "com.spotify.music", *got.CurrentApp)
	assert.Equal(t, "Listening to Spotify 🎵", got.FriendlyName)

	stub.SetApp("com.foo.bar")
	ts.latest().ch <- time.Now()
	require.Eventually(t, func() bool { return w.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Using bar 📱", w.last().FriendlyName)
}

func TestStart_TwiceLeavesOneLoop(t *testing.T) {
	w := &recordingWriter{}
	b, ts := newTestBroadcaster(sensor.NewStub(true, "com.whatsapp"), w)
	user := uuid.New()

	b.Start(user)
	b.Start(user)
	defer b.Stop()

	require.Eventually(t, func() bool { return ts.created() == 2 }, time.Second, 5*time.Millisecond)
	select {
	case <-ts.first().stopped:
	default:
		t.Fatal("first loop still running after second Start")
	}
	assert.True(t, b.Running())
}

func TestStop_IsIdempotent(t *testing.T) {
	b, ts := newTestBroadcaster(sensor.NewStub(true, "com.whatsapp"), &recordingWriter{})

	b.Stop()
	b.Start(uuid.New())
	b.Stop()
	b.Stop()

	assert.False(t, b.Running())
	select {
	case <-ts.latest().stopped:
	default:
		t.Fatal("ticker not stopped")
	}
}

func TestSample_NoPermissionWritesNothing(t *testing.T) {
	stub := sensor.NewStub(false, "com.whatsapp")
	w := &recordingWriter{}
	b, _ := newTestBroadcaster(stub, w)

	label, err := b.BroadcastNow(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, label)
	assert.Zero(t, w.count())
	assert.Zero(t, stub.Reads(), "sensor must not be read without permission")
}

func TestSample_NoResultWritesNothing(t *testing.T) {
	w := &recordingWriter{}
	b, _ := newTestBroadcaster(sensor.NewStub(true, ""), w)

	label, err := b.BroadcastNow(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, label)
	assert.Zero(t, w.count())
}

func TestLoop_ErrorIsSwallowedAndNextTickContinues(t *testing.T) {
	stub := sensor.NewStub(true, "com.netflix.mediaclient")
	w := &recordingWriter{failNext: true}
	b, ts := newTestBroadcaster(stub, w)

	b.Start(uuid.New())
	defer b.Stop()

	ticker := func() *manualTicker {
		require.Eventually(t, func() bool { return ts.created() == 1 }, time.Second, 5*time.Millisecond)
		return ts.latest()
	}()
	ticker.ch <- time.Now()

	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Watching Netflix 🎬", w.last().FriendlyName)
	assert.True(t, b.Running())
}

func TestBroadcastNow_ReturnsLabel(t *testing.T) {
	w := &recordingWriter{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := New(sensor.NewStub(true, "com.google.android.youtube"), w, logging.Discard(), 0,
		WithClock(func() time.Time { return fixed }))

	label, err := b.BroadcastNow(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Watching YouTube 📺", label)
	assert.Equal(t, fixed, w.last().UpdatedAt)
}
