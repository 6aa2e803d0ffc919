package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/database"
	"github.com/wtfmahe/PeeP/internal/models"
)

// getTestPool connects to PEEP_TEST_DATABASE_URL and applies the schema.
// Tests that need Postgres skip when it is unset.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PEEP_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PEEP_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, url)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.EnsureSchema(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

// getTestRedisClient connects to PEEP_TEST_REDIS_URL, skipping when unset.
func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("PEEP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PEEP_TEST_REDIS_URL not set")
	}

	client, err := database.NewRedisClient(context.Background(), url, 0)
	require.NoError(t, err, "Failed to connect to test Redis")
	t.Cleanup(func() { client.Close() })
	return client
}

// createTestUser registers a throwaway account and profile and removes it
// (with everything that cascades from it) when the test ends.
func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.Profile {
	t.Helper()
	ctx := context.Background()
	accounts := NewPostgresAccountRepository(pool)

	suffix := uuid.NewString()[:8]
	account := &models.Account{
		Email:        "test-" + suffix + "@example.com",
		PasswordHash: "test-hash",
	}
	profile := &models.Profile{Username: "user_" + suffix}
	require.NoError(t, accounts.Register(ctx, account, profile), "Failed to create test user")

	t.Cleanup(func() {
		if err := accounts.Delete(context.Background(), account.ID); err != nil && err != ErrNotFound {
			t.Logf("Warning: failed to cleanup test account: %v", err)
		}
	})
	return profile
}
