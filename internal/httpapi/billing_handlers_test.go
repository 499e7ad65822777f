package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/internal/tier"
)

func TestCheckout(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doJSON(t, env.server, http.MethodPost, "/billing/checkout", `{"tier":"pro"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("json client gets the checkout url", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Free)

		env.billing.On("CreateCheckout", mock.Anything, user.ID, user.Email, tier.Pro).
			Return(&billing.CheckoutSession{URL: "https://checkout.paddle.com/abc"}, nil)

		rec := doJSON(t, env.server, http.MethodPost, "/billing/checkout", `{"tier":"pro"}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://checkout.paddle.com/abc", decodeBody(t, rec)["checkout_url"])
	})

	t.Run("form post is redirected to the provider", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Free)

		env.billing.On("CreateCheckout", mock.Anything, user.ID, user.Email, tier.Agency).
			Return(&billing.CheckoutSession{URL: "https://checkout.paddle.com/xyz"}, nil)

		form := url.Values{"tier": {"agency"}}
		req := httptest.NewRequest(http.MethodPost, "/billing/checkout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)

		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://checkout.paddle.com/xyz", rec.Header().Get("Location"))
	})

	t.Run("invalid tier is 400 and writes nothing", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Free)

		env.billing.On("CreateCheckout", mock.Anything, user.ID, user.Email, tier.Tier("enterprise")).
			Return(nil, billing.ErrInvalidTier)

		rec := doJSON(t, env.server, http.MethodPost, "/billing/checkout", `{"tier":"enterprise"}`, cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_tier", decodeBody(t, rec)["error"])
	})

	t.Run("missing tier fails validation", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookie := env.loginAs(t, freelancerUser(), tier.Free)

		rec := doJSON(t, env.server, http.MethodPost, "/billing/checkout", `{}`, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestPortal(t *testing.T) {
	t.Parallel()

	t.Run("no billing account is 400", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Free)

		env.billing.On("CreatePortal", mock.Anything, user.ID).Return(nil, billing.ErrNoBillingAccount)

		rec := doJSON(t, env.server, http.MethodPost, "/billing/portal", "", cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no_billing_account", decodeBody(t, rec)["error"])
	})

	t.Run("paying user gets the portal url", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := freelancerUser()
		cookie := env.loginAs(t, user, tier.Pro)

		env.billing.On("CreatePortal", mock.Anything, user.ID).
			Return(&billing.PortalSession{URL: "https://portal.paddle.com/p"}, nil)

		rec := doJSON(t, env.server, http.MethodPost, "/billing/portal", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://portal.paddle.com/p", decodeBody(t, rec)["portal_url"])
	})
}
