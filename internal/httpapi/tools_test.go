package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/tier"
)

func freelancerUser() *account.User {
	return &account.User{
		ID:    uuid.New(),
		Email: "f@example.com",
		Name:  "F",
		Role:  account.RoleUser,
	}
}

func TestListTools_Public(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := doJSON(t, env.server, http.MethodGet, "/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	tools := body["tools"].([]any)
	assert.Len(t, tools, 4)

	// Anonymous callers see paid tools as locked.
	for _, raw := range tools {
		entry := raw.(map[string]any)
		if entry["required_tier"] == "free" {
			assert.True(t, entry["accessible"].(bool))
		} else {
			assert.False(t, entry["accessible"].(bool))
		}
	}
}

func TestListTools_StatusFilter(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := doJSON(t, env.server, http.MethodGet, "/tools?status=coming_soon", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["tools"].([]any), 1)

	rec = doJSON(t, env.server, http.MethodGet, "/tools?status=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTool_Gating(t *testing.T) {
	t.Parallel()

	t.Run("anonymous gets 401", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodGet, "/tools/leadenrich", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, env.usage.all())
	})

	t.Run("insufficient tier gets 403 with required tier", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Freelancer)

		rec := doJSON(t, env.server, http.MethodGet, "/tools/leadenrich", "", cookie)
		require.Equal(t, http.StatusForbidden, rec.Code)

		body := decodeBody(t, rec)
		details := body["details"].(map[string]any)
		assert.Equal(t, "pro", details["required_tier"])
		assert.Equal(t, "freelancer", details["current_tier"])
		assert.Empty(t, env.usage.all())
	})

	t.Run("sufficient tier gets the tool and records usage", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Pro)

		rec := doJSON(t, env.server, http.MethodGet, "/tools/leadenrich", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		calls := env.usage.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "leadenrich", calls[0].Slug)
		assert.Equal(t, "open", calls[0].Action)
		assert.Equal(t, user.ID, calls[0].UserID)
	})

	t.Run("equal tier is sufficient", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Freelancer)

		rec := doJSON(t, env.server, http.MethodGet, "/tools/invoice-generator", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown slug is 404 before the auth check leaks anything", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodGet, "/tools/nonexistent", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestToolAction(t *testing.T) {
	t.Parallel()

	t.Run("records the action label", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Pro)

		rec := doJSON(t, env.server, http.MethodPost, "/tools/leadenrich/actions", `{"action":"export"}`, cookie)
		require.Equal(t, http.StatusAccepted, rec.Code)

		calls := env.usage.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "export", calls[0].Action)
	})

	t.Run("gated the same as opening", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Free)

		rec := doJSON(t, env.server, http.MethodPost, "/tools/invoice-generator/actions", `{"action":"export"}`, cookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, env.usage.all())
	})

	t.Run("missing action label fails validation", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Pro)

		rec := doJSON(t, env.server, http.MethodPost, "/tools/leadenrich/actions", `{}`, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
