package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	oauthStateTTL = 10 * time.Minute
)

// GoogleConfig holds Google OAuth client credentials.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL,required"`
}

// OAuthStore is the persistence surface OAuth login needs.
type OAuthStore interface {
	GetUserByOAuth(ctx context.Context, provider, providerUserID string) (*account.User, error)
	GetUserByEmail(ctx context.Context, email string) (*account.User, error)
	CreateUserWithSubscription(ctx context.Context, u *account.User) error
}

// GoogleService implements the Google OAuth login flow. State values are
// single-use and expire after oauthStateTTL.
type GoogleService struct {
	cfg   *oauth2.Config
	store OAuthStore
	log   *slog.Logger

	mu     sync.Mutex
	states map[string]stateEntry
}

type stateEntry struct {
	redirect  string
	expiresAt time.Time
}

// GoogleOption configures the Google OAuth service.
type GoogleOption func(*GoogleService)

// WithGoogleLogger sets the logger. Defaults to slog.Default.
func WithGoogleLogger(log *slog.Logger) GoogleOption {
	return func(s *GoogleService) { s.log = log }
}

// NewGoogleService creates the Google OAuth login service.
func NewGoogleService(cfg GoogleConfig, store OAuthStore, opts ...GoogleOption) (*GoogleService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("auth: google client credentials are required")
	}
	if store == nil {
		return nil, errors.New("auth: store is required")
	}

	s := &GoogleService{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		store:  store,
		log:    slog.Default(),
		states: make(map[string]stateEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Begin starts the OAuth flow: registers a fresh state value and returns the
// provider's consent URL. redirect is where the app sends the user after a
// successful callback.
func (s *GoogleService) Begin(redirect string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	s.pruneLocked()
	s.states[state] = stateEntry{redirect: redirect, expiresAt: time.Now().Add(oauthStateTTL)}
	s.mu.Unlock()

	return s.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback completes the OAuth flow. First login creates the user with a
// free subscription; an email already registered through another method is
// rejected rather than silently linked.
func (s *GoogleService) Callback(ctx context.Context, state, code string) (*account.User, string, error) {
	redirect, ok := s.consumeState(state)
	if !ok {
		return nil, "", ErrInvalidState
	}

	token, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}

	info, err := s.fetchUserinfo(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if info.ID == "" || info.Email == "" {
		return nil, "", fmt.Errorf("%w: incomplete userinfo", ErrOAuthExchange)
	}

	user, err := s.store.GetUserByOAuth(ctx, "google", info.ID)
	if err == nil {
		return user, redirect, nil
	}
	if !errors.Is(err, account.ErrUserNotFound) {
		return nil, "", err
	}

	addr := NormalizeEmail(info.Email)
	if _, err := s.store.GetUserByEmail(ctx, addr); err == nil {
		return nil, "", ErrEmailLinkedElsewhere
	} else if !errors.Is(err, account.ErrUserNotFound) {
		return nil, "", err
	}

	user = &account.User{
		ID:              uuid.New(),
		Email:           addr,
		Name:            info.Name,
		Role:            account.RoleUser,
		OAuthProvider:   "google",
		OAuthProviderID: info.ID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.CreateUserWithSubscription(ctx, user); err != nil {
		if errors.Is(err, account.ErrEmailAlreadyExists) {
			return nil, "", ErrEmailLinkedElsewhere
		}
		return nil, "", err
	}

	s.log.InfoContext(ctx, "user registered via google", logger.UserID(user.ID))
	return user, redirect, nil
}

type googleUserinfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *GoogleService) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*googleUserinfo, error) {
	client := s.cfg.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrOAuthExchange, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}

	var info googleUserinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}
	return &info, nil
}

func (s *GoogleService) consumeState(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[state]
	if !ok {
		return "", false
	}
	delete(s.states, state)
	if time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.redirect, true
}

func (s *GoogleService) pruneLocked() {
	now := time.Now()
	for state, entry := range s.states {
		if now.After(entry.expiresAt) {
			delete(s.states, state)
		}
	}
}
