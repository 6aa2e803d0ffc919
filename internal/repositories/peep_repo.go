package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wtfmahe/PeeP/internal/models"
)

type PostgresPeepRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPeepRepository(pool *pgxpool.Pool) *PostgresPeepRepository {
	return &PostgresPeepRepository{pool: pool}
}

// Append inserts a new peep. Peeps are never updated, so two identical peeps
// produce two rows.
func (r *PostgresPeepRepository) Append(ctx context.Context, peep *models.PeepEvent) error {
	query := `INSERT INTO peeps (from_user_id, to_user_id, detected_app, friendly_name)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		peep.FromUserID,
		peep.ToUserID,
		peep.DetectedApp,
		peep.FriendlyName,
	).Scan(&peep.ID, &peep.CreatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to append peep: %w", err)
	}
	return nil
}

func (r *PostgresPeepRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PeepEvent, error) {
	query := `SELECT id, from_user_id, to_user_id, detected_app, friendly_name, created_at
	          FROM peeps
	          WHERE id = $1`

	peep, err := scanPeep(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get peep: %w", err)
	}
	return peep, nil
}

// LatestForUser returns the most recent peep addressed to userID.
func (r *PostgresPeepRepository) LatestForUser(ctx context.Context, userID uuid.UUID) (*models.PeepEvent, error) {
	query := `SELECT id, from_user_id, to_user_id, detected_app, friendly_name, created_at
	          FROM peeps
	          WHERE to_user_id = $1
	          ORDER BY created_at DESC
	          LIMIT 1`

	peep, err := scanPeep(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest peep: %w", err)
	}
	return peep, nil
}

// ListSince returns peeps addressed to userID created after since, oldest first.
func (r *PostgresPeepRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.PeepEvent, error) {
	query := `SELECT id, from_user_id, to_user_id, detected_app, friendly_name, created_at
	          FROM peeps
	          WHERE to_user_id = $1 AND created_at > $2
	          ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query peeps: %w", err)
	}
	defer rows.Close()

	var peeps []*models.PeepEvent
	for rows.Next() {
		peep, err := scanPeep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan peep: %w", err)
		}
		peeps = append(peeps, peep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating peeps: %w", err)
	}
	return peeps, nil
}

func scanPeep(row pgx.Row) (*models.PeepEvent, error) {
	var peep models.PeepEvent
	err := row.Scan(
		&peep.ID,
		&peep.FromUserID,
		&peep.ToUserID,
		&peep.DetectedApp,
		&peep.FriendlyName,
		&peep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &peep, nil
}
