// Package httpapi exposes the service over HTTP: billing webhook and
// checkout, the tool catalog with tier gating, auth flows, account and admin
// surfaces. Handlers stay thin; the domain packages own all decisions.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/internal/tool"
	"github.com/toolforgehq/toolforge/pkg/email"
	"github.com/toolforgehq/toolforge/pkg/session"
)

// AccountStore is the persistence surface the HTTP layer reads and writes
// directly. *account.Store satisfies it.
type AccountStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (*account.Subscription, error)
	ListUsers(ctx context.Context) ([]account.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role account.Role) error
	ListSubscriptions(ctx context.Context) ([]account.Subscription, error)
	UsageByTool(ctx context.Context) ([]account.ToolUsageCount, error)
	UsageByUser(ctx context.Context) ([]account.UserUsageCount, error)
	CreateContactSubmission(ctx context.Context, sub *account.ContactSubmission) error
	ListContactSubmissions(ctx context.Context) ([]account.ContactSubmission, error)
	MarkContactSubmissionRead(ctx context.Context, id int64) error
}

// BillingService is the billing surface. *billing.Service satisfies it.
type BillingService interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, email string, t tier.Tier) (*billing.CheckoutSession, error)
	CreatePortal(ctx context.Context, userID uuid.UUID) (*billing.PortalSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// PasswordAuth is the password flow surface. *auth.PasswordService satisfies it.
type PasswordAuth interface {
	Register(ctx context.Context, email, name, password string) (*account.User, error)
	Authenticate(ctx context.Context, email, password string) (*account.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// GoogleAuth is the OAuth flow surface. *auth.GoogleService satisfies it.
type GoogleAuth interface {
	Begin(redirect string) (string, error)
	Callback(ctx context.Context, state, code string) (*account.User, string, error)
}

// UsageRecorder is the fire-and-forget usage surface. *usage.Recorder
// satisfies it.
type UsageRecorder interface {
	Record(userID uuid.UUID, toolSlug, action string)
}

// Healthcheck probes one dependency.
type Healthcheck func(ctx context.Context) error

// Handler carries the wired dependencies for all HTTP endpoints.
type Handler struct {
	store    AccountStore
	billing  BillingService
	password PasswordAuth
	google   GoogleAuth
	usage    UsageRecorder
	sessions *session.Manager
	tiers    *tier.Catalog
	tools    *tool.Catalog
	health   map[string]Healthcheck
	log      *slog.Logger
	validate *validator.Validate

	mailer       email.EmailSender // nil disables contact notifications
	contactInbox string
}

// Option configures the handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithHealthcheck registers a named dependency probe for GET /health.
func WithHealthcheck(name string, check Healthcheck) Option {
	return func(h *Handler) { h.health[name] = check }
}

// WithGoogleAuth enables the Google login routes. Without it they 404.
func WithGoogleAuth(google GoogleAuth) Option {
	return func(h *Handler) { h.google = google }
}

// WithContactNotifier enables best-effort email notification of new contact
// submissions to the given inbox.
func WithContactNotifier(mailer email.EmailSender, inbox string) Option {
	return func(h *Handler) {
		h.mailer = mailer
		h.contactInbox = inbox
	}
}

// NewHandler wires the HTTP layer. Panics on missing required dependencies.
func NewHandler(
	store AccountStore,
	billingSvc BillingService,
	passwordSvc PasswordAuth,
	usageRec UsageRecorder,
	sessions *session.Manager,
	tiers *tier.Catalog,
	tools *tool.Catalog,
	opts ...Option,
) *Handler {
	if store == nil {
		panic("httpapi: account store is required")
	}
	if billingSvc == nil {
		panic("httpapi: billing service is required")
	}
	if passwordSvc == nil {
		panic("httpapi: password auth is required")
	}
	if usageRec == nil {
		panic("httpapi: usage recorder is required")
	}
	if sessions == nil {
		panic("httpapi: session manager is required")
	}
	if tiers == nil || tools == nil {
		panic("httpapi: catalogs are required")
	}

	h := &Handler{
		store:    store,
		billing:  billingSvc,
		password: passwordSvc,
		usage:    usageRec,
		sessions: sessions,
		tiers:    tiers,
		tools:    tools,
		health:   make(map[string]Healthcheck),
		log:      slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
