package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/pkg/pg"
)

// Store provides persistence for users, subscriptions, usage events, contact
// submissions and password reset tokens over a pgx connection pool.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store. Panics on a nil pool to fail fast during wiring.
func NewStore(db *pgxpool.Pool) *Store {
	if db == nil {
		panic("account: pgx pool is required")
	}
	return &Store{db: db}
}

const userColumns = `id, email, name, password_hash, role, oauth_provider, oauth_provider_id, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, oauth_provider, oauth_provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.OAuthProvider, u.OAuthProviderID, u.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateUserWithSubscription inserts the user and its initial free/active
// subscription row in one transaction. This is the only non-webhook writer
// of subscription tier and status.
func (s *Store) CreateUserWithSubscription(ctx context.Context, u *User) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, oauth_provider, oauth_provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.OAuthProvider, u.OAuthProviderID, u.CreatedAt,
	); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO subscriptions (user_id, tier, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)`,
		u.ID, tier.Free, StatusActive, now,
	); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return tx.Commit(ctx)
}

// GetUserByID returns a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail returns a user by case-normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByOAuth returns the user linked to an OAuth identity.
func (s *Store) GetUserByOAuth(ctx context.Context, provider, providerUserID string) (*User, error) {
	return s.scanUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth_provider = $1 AND oauth_provider_id = $2`,
		provider, providerUserID,
	)
}

// UpdateUserRole changes a user's role. Used by the admin console only.
func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role Role) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash stores a new password hash for the user.
func (s *Store) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users ordered by creation time, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
			&u.OAuthProvider, &u.OAuthProviderID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) scanUser(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.OAuthProvider, &u.OAuthProviderID, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
