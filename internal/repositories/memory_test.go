package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/models"
)

func registerMemoryUser(t *testing.T, store *MemoryStore, username string) *models.Profile {
	t.Helper()
	profile := &models.Profile{Username: username}
	err := store.Accounts().Register(context.Background(),
		&models.Account{Email: username + "@example.com", PasswordHash: "hash"}, profile)
	require.NoError(t, err)
	return profile
}

func TestMemoryStore_RegisterUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	registerMemoryUser(t, store, "alice")

	err := store.Accounts().Register(ctx,
		&models.Account{Email: "other@example.com"}, &models.Profile{Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, ErrConflict)

	err = store.Accounts().Register(ctx,
		&models.Account{Email: "ALICE@example.com"}, &models.Profile{Username: "alice2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestMemoryStore_FriendshipFlow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := registerMemoryUser(t, store, "alice")
	bob := registerMemoryUser(t, store, "bob")
	repo := store.Friendships()

	req := &models.Friendship{UserID: alice.ID, FriendID: bob.ID}
	require.NoError(t, repo.Create(ctx, req))
	assert.ErrorIs(t, repo.Create(ctx, &models.Friendship{UserID: alice.ID, FriendID: bob.ID}), ErrConflict)
	assert.ErrorIs(t, repo.Create(ctx, &models.Friendship{UserID: alice.ID, FriendID: uuid.New()}), ErrNotFound)

	found, err := repo.FindBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)

	pending, err := repo.ListPending(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].From.Username)

	assert.ErrorIs(t, repo.Accept(ctx, req.ID, alice.ID), ErrNotFound)
	require.NoError(t, repo.Accept(ctx, req.ID, bob.ID))

	friends, err := repo.ListAccepted(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)

	friends, err = repo.ListAccepted(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].ID)

	require.NoError(t, repo.Delete(ctx, req.ID, bob.ID))
	assert.ErrorIs(t, repo.Delete(ctx, req.ID, bob.ID), ErrNotFound)
}

func TestMemoryStore_StatusOneRowPerUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := registerMemoryUser(t, store, "alice")
	statuses := store.Statuses()

	require.NoError(t, statuses.Upsert(ctx, &models.UserStatus{UserID: alice.ID, FriendlyName: "Idle 😴"}))
	require.NoError(t, statuses.Upsert(ctx, &models.UserStatus{UserID: alice.ID, FriendlyName: "Watching Netflix 🎬"}))

	got, err := statuses.ListByUserIDs(ctx, []uuid.UUID{alice.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Watching Netflix 🎬", got[0].FriendlyName)

	assert.ErrorIs(t, statuses.Upsert(ctx, &models.UserStatus{UserID: uuid.New()}), ErrNotFound)
}

func TestMemoryStore_PeepsAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := registerMemoryUser(t, store, "alice")
	bob := registerMemoryUser(t, store, "bob")
	peeps := store.Peeps()

	start := time.Now().Add(-time.Second)
	for range 2 {
		require.NoError(t, peeps.Append(ctx, &models.PeepEvent{FromUserID: alice.ID, ToUserID: bob.ID, FriendlyName: "Idle 😴"}))
	}

	list, err := peeps.ListSince(ctx, bob.ID, start)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NotEqual(t, list[0].ID, list[1].ID)

	latest, err := peeps.LatestForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, list[1].ID, latest.ID)
}

func TestMemoryStore_DeleteCascades(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := registerMemoryUser(t, store, "alice")
	bob := registerMemoryUser(t, store, "bob")

	require.NoError(t, store.Friendships().Create(ctx, &models.Friendship{UserID: alice.ID, FriendID: bob.ID}))
	require.NoError(t, store.PushTokens().Upsert(ctx, &models.PushToken{UserID: alice.ID, Token: "ExponentPushToken[x]"}))
	require.NoError(t, store.Accounts().Delete(ctx, alice.ID))

	_, err := store.Profiles().GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.PushTokens().GetByUserID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	pending, err := store.Friendships().ListPending(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
