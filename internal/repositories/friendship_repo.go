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

type PostgresFriendshipRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFriendshipRepository(pool *pgxpool.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

func (r *PostgresFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	query := `INSERT INTO friends (user_id, friend_id, status)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`

	if friendship.Status == "" {
		friendship.Status = models.FriendshipPending
	}

	err := r.pool.QueryRow(ctx, query,
		friendship.UserID,
		friendship.FriendID,
		friendship.Status,
	).Scan(&friendship.ID, &friendship.CreatedAt)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrNotFound
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// FindBetween returns the friendship between a and b in either direction.
func (r *PostgresFriendshipRepository) FindBetween(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	query := `SELECT id, user_id, friend_id, status, created_at
	          FROM friends
	          WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	          ORDER BY created_at ASC
	          LIMIT 1`

	var f models.Friendship
	err := r.pool.QueryRow(ctx, query, a, b).
		Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friendship: %w", err)
	}
	return &f, nil
}

// Accept marks a pending request as accepted. Only the receiver may accept.
func (r *PostgresFriendshipRepository) Accept(ctx context.Context, id, receiverID uuid.UUID) error {
	query := `UPDATE friends
	          SET status = 'accepted'
	          WHERE id = $1 AND friend_id = $2 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, id, receiverID)
	if err != nil {
		return fmt.Errorf("failed to accept friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a friendship or request that userID is part of.
func (r *PostgresFriendshipRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM friends WHERE id = $1 AND (user_id = $2 OR friend_id = $2)`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAccepted returns the profiles of every accepted friend of userID,
// whichever side sent the request.
func (r *PostgresFriendshipRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT p.id, p.username, p.avatar_url, p.created_at
	          FROM friends f
	          JOIN profiles p
	            ON p.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
	          WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
	          ORDER BY p.username ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return profiles, nil
}

// ListPending returns the requests waiting for userID to answer.
func (r *PostgresFriendshipRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	query := `SELECT f.id, f.created_at, p.id, p.username, p.avatar_url, p.created_at
	          FROM friends f
	          JOIN profiles p ON p.id = f.user_id
	          WHERE f.friend_id = $1 AND f.status = 'pending'
	          ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		err := rows.Scan(
			&req.ID,
			&req.CreatedAt,
			&req.From.ID,
			&req.From.Username,
			&req.From.AvatarURL,
			&req.From.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend requests: %w", err)
	}
	return requests, nil
}
