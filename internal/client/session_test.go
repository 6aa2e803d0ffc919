package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/alert"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/lifecycle"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/peep"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/sensor"
)

type env struct {
	store   *repositories.MemoryStore
	feed    *realtime.MemoryFeed
	backend *backend.Backend
}

func newEnv() *env {
	store := repositories.NewMemoryStore()
	feed := realtime.NewMemoryFeed()
	return &env{
		store: store,
		feed:  feed,
		backend: backend.New(backend.Deps{
			Profiles:    store.Profiles(),
			Friendships: store.Friendships(),
			Statuses:    store.Statuses(),
			StatusCache: store.StatusCache(),
			Peeps:       store.Peeps(),
			Feed:        feed,
			Logger:      logging.Discard(),
		}),
	}
}

func (e *env) user(t *testing.T, name string) *models.Profile {
	t.Helper()
	p := &models.Profile{Username: name}
	require.NoError(t, e.store.Accounts().Register(context.Background(),
		&models.Account{Email: name + "@example.com"}, p))
	return p
}

func (e *env) befriend(t *testing.T, from, to *models.Profile) {
	t.Helper()
	ctx := context.Background()
	f := &models.Friendship{UserID: from.ID, FriendID: to.ID}
	require.NoError(t, e.store.Friendships().Create(ctx, f))
	require.NoError(t, e.store.Friendships().Accept(ctx, f.ID, to.ID))
}

type alerts struct {
	mu       sync.Mutex
	messages []string
}

func (a *alerts) sink(al alert.Alert) {
	a.mu.Lock()
	a.messages = append(a.messages, al.Message)
	a.mu.Unlock()
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

func (a *alerts) last() string {
	all := a.all()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

func (e *env) session(t *testing.T, p *models.Profile, s sensor.Sensor, state lifecycle.State) (*Session, *alerts) {
	t.Helper()
	rec := &alerts{}
	session := NewSession(p.ID, Options{
		Backend:           e.backend,
		Sensor:            s,
		Alerts:            alert.NewPresenter(time.Minute, rec.sink),
		InitialState:      state,
		BroadcastInterval: time.Hour,
		Logger:            logging.Discard(),
	})
	t.Cleanup(session.Close)
	return session, rec
}

func statusOf(s *Session, id uuid.UUID) string {
	f, ok := s.Friends().Get(id)
	if !ok || f.Status == nil {
		return ""
	}
	return f.Status.FriendlyName
}

func TestSession_FriendSeesForegroundStatus(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	e.befriend(t, alice, bob)

	aliceSession, _ := e.session(t, alice, sensor.NewStub(true, ""), lifecycle.Background)
	require.NoError(t, aliceSession.Open(ctx))
	assert.Equal(t, 1, aliceSession.Friends().Len())
	assert.Equal(t, "alice", aliceSession.Profile().Username)

	bobSession, _ := e.session(t, bob, sensor.NewStub(true, "com.spotify.music"), lifecycle.Foreground)
	require.NoError(t, bobSession.Open(ctx))
	assert.True(t, bobSession.Broadcasting())

	require.Eventually(t, func() bool {
		return statusOf(aliceSession, bob.ID) == "Listening to Spotify 🎵"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_PeepAlertsBothSides(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	e.befriend(t, alice, bob)

	aliceSession, aliceAlerts := e.session(t, alice, sensor.NewStub(true, ""), lifecycle.Background)
	bobSession, bobAlerts := e.session(t, bob, sensor.NewStub(true, ""), lifecycle.Background)
	require.NoError(t, aliceSession.Open(ctx))
	require.NoError(t, bobSession.Open(ctx))

	for range 2 {
		res, err := aliceSession.Peep(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, res.Message(), aliceAlerts.last())
	}

	want := peep.IncomingMessage("alice")
	require.Eventually(t, func() bool {
		return len(bobAlerts.all()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{want, want}, bobAlerts.all())
}

func TestSession_PeepWithoutPermission(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	e.befriend(t, alice, bob)

	stub := sensor.NewStub(false, "")
	session, rec := e.session(t, alice, stub, lifecycle.Background)
	require.NoError(t, session.Open(ctx))

	_, err := session.Peep(ctx, bob.ID)
	require.ErrorIs(t, err, sensor.ErrPermissionDenied)
	assert.Equal(t, alert.Message(sensor.ErrPermissionDenied), rec.last())

	_, err = e.store.Peeps().LatestForUser(ctx, bob.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, session.GrantPermission(ctx))
	assert.Equal(t, 1, stub.Requests())
}

func TestSession_PeepUnknownFriend(t *testing.T) {
	e := newEnv()
	alice := e.user(t, "alice")
	session, rec := e.session(t, alice, sensor.NewStub(true, ""), lifecycle.Background)
	require.NoError(t, session.Open(context.Background()))

	_, err := session.Peep(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFriend)
	assert.Equal(t, "Not found", rec.last())
}

func TestSession_LifecycleDrivesBroadcast(t *testing.T) {
	e := newEnv()
	alice := e.user(t, "alice")
	session, _ := e.session(t, alice, sensor.NewStub(true, "com.whatsapp"), lifecycle.Background)
	require.NoError(t, session.Open(context.Background()))
	assert.False(t, session.Broadcasting())

	session.SetAppState(lifecycle.Foreground)
	assert.True(t, session.Broadcasting())
	session.SetAppState(lifecycle.Background)
	assert.False(t, session.Broadcasting())
	session.SetAppState(lifecycle.Foreground)
	assert.True(t, session.Broadcasting())
	assert.Equal(t, lifecycle.Foreground, session.AppState())
}

func TestSession_CloseReleasesEverything(t *testing.T) {
	e := newEnv()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	e.befriend(t, alice, bob)

	session, _ := e.session(t, alice, sensor.NewStub(true, "com.whatsapp"), lifecycle.Foreground)
	require.NoError(t, session.Open(context.Background()))
	assert.Equal(t, 2, e.feed.Subscribers())
	assert.True(t, session.Broadcasting())

	session.Close()
	session.Close()
	assert.False(t, session.Broadcasting())
	assert.Eventually(t, func() bool { return e.feed.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSession_RefreshResubscribes(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, carol := e.user(t, "alice"), e.user(t, "carol")

	session, _ := e.session(t, alice, sensor.NewStub(true, ""), lifecycle.Background)
	require.NoError(t, session.Open(ctx))
	assert.Equal(t, 0, session.Friends().Len())
	assert.Equal(t, 1, e.feed.Subscribers())

	e.befriend(t, carol, alice)
	require.NoError(t, session.Refresh(ctx))
	assert.Equal(t, 1, session.Friends().Len())
	assert.Equal(t, 2, e.feed.Subscribers())

	f, ok := session.FriendByUsername("CAROL")
	require.True(t, ok)
	assert.Equal(t, carol.ID, f.ID)
}

func TestSession_SignOut(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	e.befriend(t, alice, bob)

	session, _ := e.session(t, alice, sensor.NewStub(true, ""), lifecycle.Background)
	require.NoError(t, session.Open(ctx))
	require.NoError(t, session.SignOut(ctx))

	assert.Equal(t, 0, session.Friends().Len())
	assert.Nil(t, session.Profile())
	assert.ErrorIs(t, session.Open(ctx), ErrClosed)
	assert.ErrorIs(t, session.Refresh(ctx), ErrClosed)
}
