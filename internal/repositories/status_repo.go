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

type PostgresStatusRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStatusRepository(pool *pgxpool.Pool) *PostgresStatusRepository {
	return &PostgresStatusRepository{pool: pool}
}

// Upsert writes the user's status row. user_id is the primary key, so however
// many times this runs there is still exactly one row per user; the latest
// write wins.
func (r *PostgresStatusRepository) Upsert(ctx context.Context, status *models.UserStatus) error {
	query := `INSERT INTO user_status (user_id, current_app, friendly_name, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id) DO UPDATE
	          SET current_app = EXCLUDED.current_app,
	              friendly_name = EXCLUDED.friendly_name,
	              updated_at = EXCLUDED.updated_at
	          RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		status.UserID,
		status.CurrentApp,
		status.FriendlyName,
		status.UpdatedAt,
	).Scan(&status.UpdatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to upsert status: %w", err)
	}
	return nil
}

func (r *PostgresStatusRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStatus, error) {
	query := `SELECT user_id, current_app, friendly_name, updated_at
	          FROM user_status
	          WHERE user_id = $1`

	var status models.UserStatus
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&status.UserID,
		&status.CurrentApp,
		&status.FriendlyName,
		&status.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &status, nil
}

// ListByUserIDs returns the statuses that exist for the given users. Users
// that never broadcast are simply absent.
func (r *PostgresStatusRepository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	query := `SELECT user_id, current_app, friendly_name, updated_at
	          FROM user_status
	          WHERE user_id = ANY($1::text[]::uuid[])`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*models.UserStatus
	for rows.Next() {
		var status models.UserStatus
		err := rows.Scan(
			&status.UserID,
			&status.CurrentApp,
			&status.FriendlyName,
			&status.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, &status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}
	return statuses, nil
}
