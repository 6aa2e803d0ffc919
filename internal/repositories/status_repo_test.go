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

func strPtr(s string) *string { return &s }

// However many times a user's status is written there is one row, holding the
// last write.
func TestStatusRepository_UpsertKeepsOneRowPerUser(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresStatusRepository(pool)
	ctx := context.Background()
	user := createTestUser(t, pool)

	apps := []string{"com.whatsapp", "com.spotify.music", "com.foo.bar"}
	for i, app := range apps {
		status := &models.UserStatus{
			UserID:       user.ID,
			CurrentApp:   strPtr(app),
			FriendlyName: "label " + app,
			UpdatedAt:    time.Now().Add(time.Duration(i) * time.Second).UTC(),
		}
		require.NoError(t, repo.Upsert(ctx, status))
	}

	var count int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_status WHERE user_id = $1`, user.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentApp)
	assert.Equal(t, "com.foo.bar", *stored.CurrentApp)
	assert.Equal(t, "label com.foo.bar", stored.FriendlyName)
}

func TestStatusRepository_GetMissing(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresStatusRepository(pool)

	_, err := repo.GetByUserID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusRepository_UpsertUnknownUser(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresStatusRepository(pool)

	err := repo.Upsert(context.Background(), &models.UserStatus{
		UserID:       uuid.New(),
		FriendlyName: "Idle 😴",
		UpdatedAt:    time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusRepository_ListByUserIDs(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresStatusRepository(pool)
	ctx := context.Background()

	a := createTestUser(t, pool)
	b := createTestUser(t, pool)
	silent := createTestUser(t, pool)

	for _, u := range []*models.Profile{a, b} {
		require.NoError(t, repo.Upsert(ctx, &models.UserStatus{
			UserID:       u.ID,
			CurrentApp:   strPtr("com.discord"),
			FriendlyName: "Chatting on Discord 💬",
			UpdatedAt:    time.Now(),
		}))
	}

	statuses, err := repo.ListByUserIDs(ctx, []uuid.UUID{a.ID, b.ID, silent.ID})
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	none, err := repo.ListByUserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatusCache_SetGet(t *testing.T) {
	client := getTestRedisClient(t)
	cache := NewRedisStatusCache(client, time.Minute)
	ctx := context.Background()

	status := &models.UserStatus{
		UserID:       uuid.New(),
		CurrentApp:   strPtr("com.spotify.music"),
		FriendlyName: "Listening to Spotify 🎵",
		UpdatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.Set(ctx, status))
	defer cache.Delete(ctx, status.UserID)

	got, err := cache.Get(ctx, status.UserID)
	require.NoError(t, err)
	assert.Equal(t, status.FriendlyName, got.FriendlyName)
	assert.True(t, status.UpdatedAt.Equal(got.UpdatedAt))

	require.NoError(t, cache.Delete(ctx, status.UserID))
	_, err = cache.Get(ctx, status.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}
