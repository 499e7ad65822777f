package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/auth"
	"github.com/toolforgehq/toolforge/internal/tier"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates the account and sets a session cookie", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := &account.User{ID: uuid.New(), Email: "new@example.com", Name: "New", Role: account.RoleUser}
		env.password.On("Register", mock.Anything, "new@example.com", "New", "long-enough-pass").Return(user, nil)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/register",
			`{"email":"new@example.com","name":"New","password":"long-enough-pass"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, user.ID.String(), decodeBody(t, rec)["id"])

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "tf_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.password.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, auth.ErrEmailTaken)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/register",
			`{"email":"dup@example.com","name":"D","password":"long-enough-pass"}`, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "email_taken", decodeBody(t, rec)["error"])
	})

	t.Run("invalid email fails validation before the service", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodPost, "/auth/register",
			`{"email":"not-an-email","name":"N","password":"long-enough-pass"}`, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env.password.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoginLogout(t *testing.T) {
	t.Parallel()

	t.Run("bad credentials are 401 with a generic key", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.password.On("Authenticate", mock.Anything, "u@example.com", "wrong").
			Return(nil, auth.ErrInvalidCredentials)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/login",
			`{"email":"u@example.com","password":"wrong"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", decodeBody(t, rec)["error"])
	})

	t.Run("login then logout clears the session", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := &account.User{ID: uuid.New(), Email: "u@example.com", Role: account.RoleUser}
		env.password.On("Authenticate", mock.Anything, "u@example.com", "right-password").Return(user, nil)
		env.store.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		env.store.On("GetSubscription", mock.Anything, user.ID).Return(nil, account.ErrSubscriptionNotFound)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/login",
			`{"email":"u@example.com","password":"right-password"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		cookie := rec.Result().Cookies()[0]

		rec = doJSON(t, env.server, http.MethodPost, "/auth/logout", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		// The cleared cookie has an immediate expiry.
		cleared := rec.Result().Cookies()[0]
		assert.Negative(t, cleared.MaxAge)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.password.On("RequestPasswordReset", mock.Anything, "anyone@example.com").Return(nil)

	rec := doJSON(t, env.server, http.MethodPost, "/auth/forgot-password",
		`{"email":"anyone@example.com"}`, nil)
	// Always 202 so the endpoint cannot probe registered emails.
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.password.On("ResetPassword", mock.Anything, "stale", "new-long-password").
			Return(auth.ErrInvalidToken)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/reset-password",
			`{"token":"stale","password":"new-long-password"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_token", decodeBody(t, rec)["error"])
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.password.On("ResetPassword", mock.Anything, "fresh", "new-long-password").Return(nil)

		rec := doJSON(t, env.server, http.MethodPost, "/auth/reset-password",
			`{"token":"fresh","password":"new-long-password"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodGet, "/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reflects the store's current tier", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Agency)

		rec := doJSON(t, env.server, http.MethodGet, "/me", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "agency", body["tier"])
		assert.Equal(t, user.Email, body["email"])
	})
}

func TestMySubscription(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := freelancerUser()
	cookie := env.loginAs(t, user, tier.Pro)

	rec := doJSON(t, env.server, http.MethodGet, "/me/subscription", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "pro", body["tier"])
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, false, body["has_billing_account"])
}
