package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/pkg/email"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

// UserStore is the persistence surface password auth needs. *account.Store
// satisfies it.
type UserStore interface {
	CreateUserWithSubscription(ctx context.Context, u *account.User) error
	GetUserByEmail(ctx context.Context, email string) (*account.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	CreatePasswordResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
	ConsumePasswordResetToken(ctx context.Context, token string) (*account.PasswordResetToken, error)
}

// PasswordService handles registration, login and the password reset flow.
type PasswordService struct {
	store    UserStore
	mailer   email.EmailSender
	log      *slog.Logger
	resetURL string // base URL the emailed token is appended to
}

// PasswordOption configures the password service.
type PasswordOption func(*PasswordService)

// WithPasswordLogger sets the logger. Defaults to slog.Default.
func WithPasswordLogger(log *slog.Logger) PasswordOption {
	return func(s *PasswordService) { s.log = log }
}

// NewPasswordService creates the password auth service. resetURL is the page
// the reset email links to; the token is appended as a query parameter.
func NewPasswordService(store UserStore, mailer email.EmailSender, resetURL string, opts ...PasswordOption) *PasswordService {
	if store == nil {
		panic("auth: store is required")
	}
	if mailer == nil {
		panic("auth: mailer is required")
	}

	s := &PasswordService{
		store:    store,
		mailer:   mailer,
		log:      slog.Default(),
		resetURL: strings.TrimRight(resetURL, "/"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// writes go through this so the unique index sees one canonical form.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Register creates a user with a hashed password and their initial free
// subscription in one transaction.
func (s *PasswordService) Register(ctx context.Context, emailAddr, name, password string) (*account.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &account.User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(emailAddr),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         account.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUserWithSubscription(ctx, user); err != nil {
		if errors.Is(err, account.ErrEmailAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(user.ID))
	return user, nil
}

// Authenticate verifies email and password. Every failure mode returns
// ErrInvalidCredentials; the dummy compare keeps timing flat for unknown
// emails.
func (s *PasswordService) Authenticate(ctx context.Context, emailAddr, password string) (*account.User, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if len(user.PasswordHash) == 0 {
		// OAuth-only account.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// RequestPasswordReset issues a single-use reset token and emails it. Always
// succeeds from the caller's perspective so the endpoint cannot be used to
// probe which emails are registered.
func (s *PasswordService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	addr := NormalizeEmail(emailAddr)

	user, err := s.store.GetUserByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if len(user.PasswordHash) == 0 {
		// OAuth-only accounts have no password to reset.
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.store.CreatePasswordResetToken(ctx, addr, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	err = s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   addr,
		Subject:  "Reset your password",
		BodyHTML: fmt.Sprintf(`<p>Someone requested a password reset for your account.</p><p><a href="%s">Reset password</a></p><p>The link expires in one hour. If this wasn't you, ignore this email.</p>`, link),
		Tag:      "password-reset",
	})
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.log.InfoContext(ctx, "password reset requested", logger.UserID(user.ID))
	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	reset, err := s.store.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, reset.Email)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password reset completed", logger.UserID(user.ID))
	return nil
}

// dummyHash is a valid bcrypt hash of a random string, compared against when
// the email is unknown so both paths cost one bcrypt verification.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
