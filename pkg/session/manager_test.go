package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/pkg/session"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	store := session.NewMemoryStore(0)
	return session.NewManager(store, session.Config{
		CookieName: "tf_session",
		TTL:        time.Hour,
	})
}

func TestAuthenticateSetsCookie(t *testing.T) {
	mgr := newManager(t)
	userID := uuid.New()

	w := httptest.NewRecorder()
	sess, err := mgr.Authenticate(context.Background(), w, userID)
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated())
	assert.Equal(t, userID, *sess.UserID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tf_session", cookies[0].Name)
	assert.Equal(t, sess.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestGetRoundTrip(t *testing.T) {
	mgr := newManager(t)
	userID := uuid.New()

	w := httptest.NewRecorder()
	created, err := mgr.Authenticate(context.Background(), w, userID)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "tf_session", Value: created.Token})

	got, err := mgr.Get(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, userID, *got.UserID)
}

func TestGetNoCookie(t *testing.T) {
	mgr := newManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := mgr.Get(context.Background(), r)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestLogoutClearsSession(t *testing.T) {
	mgr := newManager(t)

	w := httptest.NewRecorder()
	created, err := mgr.Authenticate(context.Background(), w, uuid.New())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: "tf_session", Value: created.Token})

	w2 := httptest.NewRecorder()
	require.NoError(t, mgr.Logout(context.Background(), w2, r))

	_, err = mgr.Get(context.Background(), r)
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	cookies := w2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := session.NewMemoryStore(0)
	userID := uuid.New()

	sess := session.New("tok", &userID, -time.Minute)
	require.NoError(t, store.Create(context.Background(), sess))

	_, err := store.Get(context.Background(), "tok")
	require.ErrorIs(t, err, session.ErrSessionExpired)
}
