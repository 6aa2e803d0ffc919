package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wtfmahe/PeeP/internal/models"
)

type PostgresPushTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPushTokenRepository(pool *pgxpool.Pool) *PostgresPushTokenRepository {
	return &PostgresPushTokenRepository{pool: pool}
}

// Upsert stores the user's current push token, replacing any previous one.
func (r *PostgresPushTokenRepository) Upsert(ctx context.Context, token *models.PushToken) error {
	query := `INSERT INTO push_tokens (user_id, token, platform, updated_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (user_id) DO UPDATE
	          SET token = EXCLUDED.token, platform = EXCLUDED.platform, updated_at = NOW()
	          RETURNING updated_at`

	if token.Platform == "" {
		token.Platform = "expo"
	}

	err := r.pool.QueryRow(ctx, query, token.UserID, token.Token, token.Platform).Scan(&token.UpdatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to upsert push token: %w", err)
	}
	return nil
}

func (r *PostgresPushTokenRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PushToken, error) {
	query := `SELECT user_id, token, platform, updated_at FROM push_tokens WHERE user_id = $1`

	var token models.PushToken
	err := r.pool.QueryRow(ctx, query, userID).
		Scan(&token.UserID, &token.Token, &token.Platform, &token.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get push token: %w", err)
	}
	return &token, nil
}

// Delete clears the user's push token. Clearing a missing token is not an error.
func (r *PostgresPushTokenRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM push_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete push token: %w", err)
	}
	return nil
}
