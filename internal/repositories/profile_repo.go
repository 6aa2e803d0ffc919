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

type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT id, username, avatar_url, created_at FROM profiles WHERE id = $1`

	var profile models.Profile
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&profile.ID, &profile.Username, &profile.AvatarURL, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `SELECT id, username, avatar_url, created_at FROM profiles WHERE username = $1`

	var profile models.Profile
	err := r.pool.QueryRow(ctx, query, username).
		Scan(&profile.ID, &profile.Username, &profile.AvatarURL, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}
	return &profile, nil
}
