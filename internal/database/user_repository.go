package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/casesurf/casesurf/pkg/models"
)

var (
	// ErrUserNotFound is returned when no profile exists for the given ID
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientCredit is returned when a conditional credit
	// deduction matches no row because the balance is already zero
	ErrInsufficientCredit = errors.New("insufficient credit")
)

// UserRepository provides user profile operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureUser creates the profile on first sign-in and returns it.
// Existing profiles are returned untouched, so the starting credit
// grant happens exactly once per user.
func (r *UserRepository) EnsureUser(ctx context.Context, id, username, email string, startingCredit int) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, credit, is_pro)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, query, id, username, email, startingCredit); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	return r.GetUser(ctx, id)
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, username, email, credit, is_pro, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.Credit, &user.IsPro,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// ConsumeCredit atomically deducts one credit. The condition keeps the
// balance from ever going negative under concurrent requests.
func (r *UserRepository) ConsumeCredit(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET credit = credit - 1, updated_at = NOW()
		WHERE id = $1 AND credit > 0
	`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to consume credit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing profile from an empty balance
		if _, err := r.GetUser(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientCredit
	}

	return nil
}

// AddCredits grants credits to a user
func (r *UserRepository) AddCredits(ctx context.Context, id string, credits int) error {
	query := `
		UPDATE users
		SET credit = credit + $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, credits)
	if err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetPro marks a user as unlimited
func (r *UserRepository) SetPro(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_pro = true, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to set pro: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
