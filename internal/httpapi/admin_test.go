package httpapi_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/tier"
)

func adminUser() *account.User {
	return &account.User{
		ID:    uuid.New(),
		Email: "admin@example.com",
		Name:  "Admin",
		Role:  account.RoleAdmin,
	}
}

func TestAdminGating(t *testing.T) {
	t.Parallel()

	t.Run("anonymous is 401", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodGet, "/admin/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Agency)

		rec := doJSON(t, env.server, http.MethodGet, "/admin/users", "", cookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAdminListUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := adminUser()
	cookie := env.loginAs(t, admin, tier.Free)

	env.store.On("ListUsers", mock.Anything).Return([]account.User{*admin}, nil)

	rec := doJSON(t, env.server, http.MethodGet, "/admin/users", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["users"].([]any), 1)
}

func TestAdminUpdateRole(t *testing.T) {
	t.Parallel()

	t.Run("promotes a user", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		admin := adminUser()
		cookie := env.loginAs(t, admin, tier.Free)

		target := uuid.New()
		env.store.On("UpdateUserRole", mock.Anything, target, account.RoleAdmin).Return(nil)

		rec := doJSON(t, env.server, http.MethodPatch,
			fmt.Sprintf("/admin/users/%s/role", target), `{"role":"admin"}`, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects self-demotion", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		admin := adminUser()
		cookie := env.loginAs(t, admin, tier.Free)

		rec := doJSON(t, env.server, http.MethodPatch,
			fmt.Sprintf("/admin/users/%s/role", admin.ID), `{"role":"user"}`, cookie)
		require.Equal(t, http.StatusConflict, rec.Code)
		env.store.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown role fails validation", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		rec := doJSON(t, env.server, http.MethodPatch,
			fmt.Sprintf("/admin/users/%s/role", uuid.New()), `{"role":"superuser"}`, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		target := uuid.New()
		env.store.On("UpdateUserRole", mock.Anything, target, account.RoleAdmin).
			Return(account.ErrUserNotFound)

		rec := doJSON(t, env.server, http.MethodPatch,
			fmt.Sprintf("/admin/users/%s/role", target), `{"role":"admin"}`, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminUsage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cookie := env.loginAs(t, adminUser(), tier.Free)

	env.store.On("UsageByTool", mock.Anything).Return([]account.ToolUsageCount{
		{ToolSlug: "leadenrich", Count: 42},
	}, nil)
	env.store.On("UsageByUser", mock.Anything).Return([]account.UserUsageCount{}, nil)

	rec := doJSON(t, env.server, http.MethodGet, "/admin/usage", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	byTool := body["by_tool"].([]any)
	require.Len(t, byTool, 1)
}

func TestAdminContact(t *testing.T) {
	t.Parallel()

	t.Run("lists submissions", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		env.store.On("ListContactSubmissions", mock.Anything).Return([]account.ContactSubmission{
			{ID: 1, Name: "N", Email: "n@example.com", Message: "hi"},
		}, nil)

		rec := doJSON(t, env.server, http.MethodGet, "/admin/contact", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("marks one read", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		env.store.On("MarkContactSubmissionRead", mock.Anything, int64(7)).Return(nil)

		rec := doJSON(t, env.server, http.MethodPost, "/admin/contact/7/read", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminSaveTool(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges without persisting", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		rec := doJSON(t, env.server, http.MethodPost, "/admin/tools/leadenrich", "", cookie)
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "accepted", decodeBody(t, rec)["status"])
	})

	t.Run("unknown slug is 404", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, adminUser(), tier.Free)

		rec := doJSON(t, env.server, http.MethodPost, "/admin/tools/nonexistent", "", cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestContactSubmission(t *testing.T) {
	t.Parallel()

	t.Run("persists and returns the id", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.store.On("CreateContactSubmission", mock.Anything, mock.MatchedBy(func(sub *account.ContactSubmission) bool {
			return sub.Name == "Visitor" && sub.InquiryType == "general"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*account.ContactSubmission).ID = 11
		}).Return(nil)

		rec := doJSON(t, env.server, http.MethodPost, "/contact",
			`{"name":"Visitor","email":"v@example.com","message":"hello"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, float64(11), decodeBody(t, rec)["id"])
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodPost, "/contact", `{"name":"V"}`, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		details := decodeBody(t, rec)["details"].(map[string]any)
		fields := details["fields"].(map[string]any)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "message")
	})

	t.Run("store failure is 500", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.store.On("CreateContactSubmission", mock.Anything, mock.Anything).
			Return(errors.New("insert failed"))

		rec := doJSON(t, env.server, http.MethodPost, "/contact",
			`{"name":"V","email":"v@example.com","message":"hello"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("all checks passing", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t,
			mockHealthOption("postgres", nil),
			mockHealthOption("redis", nil),
		)

		rec := doJSON(t, env.server, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	})

	t.Run("one failing check degrades the endpoint", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t,
			mockHealthOption("postgres", nil),
			mockHealthOption("redis", errors.New("connection refused")),
		)

		rec := doJSON(t, env.server, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decodeBody(t, rec)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["postgres"])
		assert.Equal(t, "down", checks["redis"])
	})
}
