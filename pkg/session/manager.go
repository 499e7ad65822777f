package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle and cookie transport. Tokens are opaque
// random references to server-side state, so the cookie value itself carries
// no user data.
type Manager struct {
	store  Store
	config Config
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, cfg Config) *Manager {
	if store == nil {
		panic("session: store is required")
	}
	return &Manager{store: store, config: cfg}
}

// Get resolves the session referenced by the request cookie.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrSessionNotFound
	}
	return m.store.Get(ctx, cookie.Value)
}

// Authenticate creates an authenticated session for the user and sets the
// session cookie on the response.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := New(token, &userID, m.config.TTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	m.setCookie(w, token, m.config.TTL)
	return session, nil
}

// Logout deletes the session and clears the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		if err := m.store.Delete(ctx, cookie.Value); err != nil {
			return err
		}
	}
	m.clearCookie(w)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
