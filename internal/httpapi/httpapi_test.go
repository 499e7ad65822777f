package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/internal/httpapi"
	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/internal/tool"
	"github.com/toolforgehq/toolforge/pkg/session"
)

type mockAccountStore struct {
	mock.Mock
}

func (m *mockAccountStore) GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *mockAccountStore) GetSubscription(ctx context.Context, userID uuid.UUID) (*account.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Subscription), args.Error(1)
}

func (m *mockAccountStore) ListUsers(ctx context.Context) ([]account.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.User), args.Error(1)
}

func (m *mockAccountStore) UpdateUserRole(ctx context.Context, id uuid.UUID, role account.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *mockAccountStore) ListSubscriptions(ctx context.Context) ([]account.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Subscription), args.Error(1)
}

func (m *mockAccountStore) UsageByTool(ctx context.Context) ([]account.ToolUsageCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.ToolUsageCount), args.Error(1)
}

func (m *mockAccountStore) UsageByUser(ctx context.Context) ([]account.UserUsageCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.UserUsageCount), args.Error(1)
}

func (m *mockAccountStore) CreateContactSubmission(ctx context.Context, sub *account.ContactSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockAccountStore) ListContactSubmissions(ctx context.Context) ([]account.ContactSubmission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.ContactSubmission), args.Error(1)
}

func (m *mockAccountStore) MarkContactSubmissionRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBilling struct {
	mock.Mock
}

func (m *mockBilling) CreateCheckout(ctx context.Context, userID uuid.UUID, email string, t tier.Tier) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, userID, email, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *mockBilling) CreatePortal(ctx context.Context, userID uuid.UUID) (*billing.PortalSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PortalSession), args.Error(1)
}

func (m *mockBilling) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

type mockPasswordAuth struct {
	mock.Mock
}

func (m *mockPasswordAuth) Register(ctx context.Context, email, name, password string) (*account.User, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *mockPasswordAuth) Authenticate(ctx context.Context, email, password string) (*account.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *mockPasswordAuth) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockPasswordAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

type recordedUsage struct {
	UserID uuid.UUID
	Slug   string
	Action string
}

type usageSpy struct {
	mu    sync.Mutex
	calls []recordedUsage
}

func (s *usageSpy) Record(userID uuid.UUID, toolSlug, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedUsage{UserID: userID, Slug: toolSlug, Action: action})
}

func (s *usageSpy) all() []recordedUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedUsage(nil), s.calls...)
}

type testEnv struct {
	store    *mockAccountStore
	billing  *mockBilling
	password *mockPasswordAuth
	usage    *usageSpy
	sessions *session.Manager
	server   http.Handler
}

func newTestEnv(t *testing.T, opts ...httpapi.Option) *testEnv {
	t.Helper()

	tiers, err := tier.NewCatalog([]tier.Plan{
		{Tier: tier.Free, Name: "Free"},
		{Tier: tier.Freelancer, Name: "Freelancer", PaddlePriceID: "pri_freelancer"},
		{Tier: tier.Pro, Name: "Pro", PaddlePriceID: "pri_pro"},
		{Tier: tier.Agency, Name: "Agency", PaddlePriceID: "pri_agency"},
	})
	require.NoError(t, err)

	tools, err := tool.NewCatalog([]tool.Tool{
		{Slug: "followup-sequencer", Name: "Follow-up Sequencer", Status: tool.StatusLive, RequiredTier: tier.Free},
		{Slug: "invoice-generator", Name: "Invoice Generator", Status: tool.StatusLive, RequiredTier: tier.Freelancer},
		{Slug: "leadenrich", Name: "LeadEnrich", Status: tool.StatusLive, RequiredTier: tier.Pro},
		{Slug: "portfolio-builder", Name: "Portfolio Builder", Status: tool.StatusComingSoon, RequiredTier: tier.Agency},
	})
	require.NoError(t, err)

	env := &testEnv{
		store:    new(mockAccountStore),
		billing:  new(mockBilling),
		password: new(mockPasswordAuth),
		usage:    &usageSpy{},
		sessions: session.NewManager(session.NewMemoryStore(0), session.Config{
			CookieName: "tf_session",
			TTL:        time.Hour,
		}),
	}

	h := httpapi.NewHandler(env.store, env.billing, env.password, env.usage, env.sessions, tiers, tools, opts...)
	env.server = h.Routes()
	return env
}

// loginAs creates a server-side session for the user and primes the store
// mock so identity resolution sees the given tier and role.
func (env *testEnv) loginAs(t *testing.T, user *account.User, userTier tier.Tier) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := env.sessions.Authenticate(context.Background(), rec, user.ID)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	env.store.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	env.store.On("GetSubscription", mock.Anything, user.ID).Return(&account.Subscription{
		UserID: user.ID,
		Tier:   userTier,
		Status: account.StatusActive,
	}, nil)

	return cookies[0]
}

func doJSON(t *testing.T, server http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func mockHealthOption(name string, err error) httpapi.Option {
	return httpapi.WithHealthcheck(name, func(ctx context.Context) error { return err })
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
