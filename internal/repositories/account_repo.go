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

type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Register creates the account and its profile in one transaction. Email and
// username uniqueness are enforced by the table constraints, so two racing
// sign-ups for the same username cannot both succeed.
func (r *PostgresAccountRepository) Register(ctx context.Context, account *models.Account, profile *models.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin registration: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		account.Email, account.PasswordHash,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return registrationError(err, "failed to create account")
	}

	profile.ID = account.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO profiles (id, username, avatar_url)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		profile.ID, profile.Username, profile.AvatarURL,
	).Scan(&profile.CreatedAt)
	if err != nil {
		return registrationError(err, "failed to create profile")
	}

	if err := tx.Commit(ctx); err != nil {
		return registrationError(err, "failed to commit registration")
	}
	return nil
}

func registrationError(err error, msg string) error {
	code, constraint := pgErrorCode(err)
	if code == pgUniqueViolation {
		switch constraint {
		case "accounts_email_key":
			return ErrEmailTaken
		case "profiles_username_key":
			return ErrUsernameTaken
		}
		return ErrConflict
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM accounts WHERE id = $1`

	var account models.Account
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM accounts WHERE email = $1`

	var account models.Account
	err := r.pool.QueryRow(ctx, query, email).
		Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Delete removes the account. Profile, friendships, status, peeps and push
// token cascade.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
