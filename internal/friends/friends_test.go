package friends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/logging"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/realtime"
	"github.com/wtfmahe/PeeP/internal/repositories"
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

func statusOf(l *List, id uuid.UUID) string {
	f, ok := l.Get(id)
	if !ok || f.Status == nil {
		return ""
	}
	return f.Status.FriendlyName
}

func TestList_ApplyStatus(t *testing.T) {
	bob := models.Profile{ID: uuid.New(), Username: "bob"}
	l := NewList()
	l.Replace([]models.FriendWithStatus{{Profile: bob}})

	assert.False(t, l.ApplyStatus(models.UserStatus{UserID: uuid.New(), FriendlyName: "Idle 😴"}))
	assert.True(t, l.ApplyStatus(models.UserStatus{UserID: bob.ID, FriendlyName: "Idle 😴"}))
	assert.True(t, l.ApplyStatus(models.UserStatus{UserID: bob.ID, FriendlyName: "Watching Netflix 🎬"}))
	assert.Equal(t, "Watching Netflix 🎬", statusOf(l, bob.ID))

	snap := l.Snapshot()
	snap[0].Status.FriendlyName = "mutated"
	assert.Equal(t, "Watching Netflix 🎬", statusOf(l, bob.ID), "snapshots are copies")
}

func TestLoader_RefetchBothDirections(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	me := e.user(t, "me")
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	e.user(t, "stranger")

	e.befriend(t, me, alice)
	e.befriend(t, bob, me)
	require.NoError(t, e.store.Statuses().Upsert(ctx, &models.UserStatus{UserID: bob.ID, FriendlyName: "Using Snapchat 👻"}))

	l := NewList()
	require.NoError(t, NewLoader(e.backend, l).Refetch(ctx, me.ID))

	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, l.IDs())
	assert.Equal(t, "Using Snapchat 👻", statusOf(l, bob.ID))
	f, _ := l.Get(alice.ID)
	assert.Nil(t, f.Status)
}

type failingDirectory struct{}

func (failingDirectory) AcceptedFriends(context.Context, uuid.UUID) ([]*models.Profile, error) {
	return nil, errors.New("offline")
}

func (failingDirectory) StatusesFor(context.Context, []uuid.UUID) ([]*models.UserStatus, error) {
	return nil, nil
}

func TestLoader_ErrorKeepsList(t *testing.T) {
	l := NewList()
	l.Replace([]models.FriendWithStatus{{Profile: models.Profile{ID: uuid.New()}}})

	err := NewLoader(failingDirectory{}, l).Refetch(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Equal(t, 1, l.Len())
}

func TestSubscription_AppliesOnlyFriendChanges(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	l := NewList()
	l.Replace([]models.FriendWithStatus{{Profile: *bob}})

	sub := NewSubscription(e.backend, l, logging.Discard())
	require.NoError(t, sub.Subscribe(ctx, l.IDs()))
	defer sub.Unsubscribe()

	require.NoError(t, e.backend.UpsertStatus(ctx, &models.UserStatus{UserID: carol.ID, FriendlyName: "Browsing Reddit 🔥"}))
	require.NoError(t, e.backend.UpsertStatus(ctx, &models.UserStatus{UserID: bob.ID, FriendlyName: "Watching YouTube 📺"}))

	require.Eventually(t, func() bool {
		return statusOf(l, bob.ID) == "Watching YouTube 📺"
	}, time.Second, 5*time.Millisecond)

	_, ok := l.Get(carol.ID)
	assert.False(t, ok, "non-friends never enter the list")
	assert.Equal(t, 1, l.Len())
}

func TestSubscription_ResubscribeKeepsOneFeed(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New()}

	sub := NewSubscription(e.backend, NewList(), logging.Discard())
	require.NoError(t, sub.Subscribe(ctx, ids))
	require.NoError(t, sub.Subscribe(ctx, ids))
	assert.Equal(t, 1, e.feed.Subscribers())

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, e.feed.Subscribers())
	assert.False(t, sub.Active())
}

func TestSubscription_EmptySetOpensNothing(t *testing.T) {
	e := newEnv()
	sub := NewSubscription(e.backend, NewList(), logging.Discard())

	require.NoError(t, sub.Subscribe(context.Background(), []uuid.UUID{uuid.New()}))
	require.NoError(t, sub.Subscribe(context.Background(), nil))

	assert.False(t, sub.Active())
	assert.Equal(t, 0, e.feed.Subscribers())
}
