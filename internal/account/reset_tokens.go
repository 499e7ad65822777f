package account

import (
	"context"
	"fmt"
	"time"

	"github.com/toolforgehq/toolforge/pkg/pg"
)

// CreatePasswordResetToken stores a reset token for an email address.
// Multiple outstanding tokens per email are allowed; each is single-use.
func (s *Store) CreatePasswordResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (identifier, token, expires_at)
		VALUES ($1, $2, $3)`,
		email, token, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// ConsumePasswordResetToken atomically deletes and returns the token row.
// Expired tokens are deleted but reported as not found, so a token can never
// be used twice or after expiry.
func (s *Store) ConsumePasswordResetToken(ctx context.Context, token string) (*PasswordResetToken, error) {
	var t PasswordResetToken
	err := s.db.QueryRow(ctx, `
		DELETE FROM password_reset_tokens WHERE token = $1
		RETURNING identifier, token, expires_at`,
		token,
	).Scan(&t.Email, &t.Token, &t.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	if time.Now().After(t.ExpiresAt) {
		return nil, ErrTokenNotFound
	}
	return &t, nil
}
