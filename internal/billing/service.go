package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

// SubscriptionStore is the persistence surface the billing service needs.
// *account.Store satisfies it.
type SubscriptionStore interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*account.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *account.Subscription) error
	SyncSubscriptionsByProviderID(ctx context.Context, providerSubID string, upd account.SubscriptionSync) (int64, error)
	CancelSubscriptionsByProviderID(ctx context.Context, providerSubID string) (int64, error)
	MarkSubscriptionsPastDueByProviderID(ctx context.Context, providerSubID string) (int64, error)
}

// Service owns checkout/portal creation and webhook state sync. The webhook
// is the single source of truth for paid state: CreateCheckout and
// CreatePortal never write to the store.
type Service struct {
	store    SubscriptionStore
	provider Provider
	catalog  *tier.Catalog
	log      *slog.Logger

	successURL string
}

// ServiceOption configures the billing service.
type ServiceOption func(*Service)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithSuccessURL sets the post-checkout redirect URL.
func WithSuccessURL(url string) ServiceOption {
	return func(s *Service) { s.successURL = url }
}

// NewService creates the billing service. Panics on nil dependencies since
// they indicate a programming error in wiring.
func NewService(store SubscriptionStore, provider Provider, catalog *tier.Catalog, opts ...ServiceOption) *Service {
	if store == nil {
		panic("billing: store is required")
	}
	if provider == nil {
		panic("billing: provider is required")
	}
	if catalog == nil {
		panic("billing: catalog is required")
	}

	s := &Service{
		store:    store,
		provider: provider,
		catalog:  catalog,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout creates a hosted checkout session for a paid tier. The
// user's subscription row is not touched; the tier change lands later via the
// checkout-completed webhook.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, email string, t tier.Tier) (*CheckoutSession, error) {
	plan, ok := s.catalog.ByTier(t)
	if !ok || plan.PaddlePriceID == "" {
		return nil, fmt.Errorf("%w: %q is not purchasable", ErrInvalidTier, t)
	}

	session, err := s.provider.CreateCheckout(ctx, CheckoutRequest{
		PriceID:    plan.PaddlePriceID,
		UserID:     userID.String(),
		Tier:       string(t),
		Email:      email,
		SuccessURL: s.successURL,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "checkout session created",
		logger.UserID(userID.String()),
		logger.Tier(string(t)),
	)
	return session, nil
}

// CreatePortal creates a customer portal session for a user with a billing
// history. Users who never completed a checkout have no provider customer
// reference and get ErrNoBillingAccount.
func (s *Service) CreatePortal(ctx context.Context, userID uuid.UUID) (*PortalSession, error) {
	sub, err := s.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrSubscriptionNotFound) {
			return nil, ErrNoBillingAccount
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub.PaddleCustomerID == "" {
		return nil, ErrNoBillingAccount
	}
	return s.provider.CreatePortal(ctx, sub.PaddleCustomerID)
}

// HandleWebhook authenticates and applies a provider webhook. Signature and
// decode failures surface as typed errors for the HTTP layer to reject;
// recognized events that reference unknown local state are acknowledged after
// logging, since retrying them cannot help.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	log := s.log.With(
		logger.EventType(string(event.ProviderEvent)),
		logger.SubscriptionID(event.SubscriptionID),
	)

	switch event.Type {
	case EventCheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, log, event)
	case EventSubscriptionUpdated:
		return s.applySubscriptionUpdated(ctx, log, event)
	case EventSubscriptionDeleted:
		return s.applySubscriptionDeleted(ctx, log, event)
	case EventPaymentFailed:
		return s.applyPaymentFailed(ctx, log, event)
	default:
		log.InfoContext(ctx, "ignoring unhandled billing event")
		return nil
	}
}

// applyCheckoutCompleted attributes a completed checkout to a user via the
// metadata that round-tripped through the provider and overwrites their
// subscription row. Idempotent: replays upsert identical state.
func (s *Service) applyCheckoutCompleted(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		// Nothing to attribute the purchase to; retrying cannot fix it.
		log.ErrorContext(ctx, "checkout completed without usable user metadata", logger.Error(err))
		return nil
	}

	sub := &account.Subscription{
		UserID:           userID,
		Tier:             s.resolveTier(event.PriceID, event.Tier),
		Status:           account.StatusActive,
		PaddleCustomerID: event.CustomerID,
		PaddlePriceID:    event.PriceID,
	}
	// Transaction events often omit status; a completed checkout means active.
	if event.Status != "" {
		sub.Status = MapProviderStatus(event.Status)
	}

	// Prefer the provider's authoritative view over transaction event fields.
	if event.SubscriptionID != "" {
		detail, err := s.provider.GetSubscription(ctx, event.SubscriptionID)
		if err != nil {
			return fmt.Errorf("failed to fetch subscription detail: %w", err)
		}
		sub.PaddleSubscriptionID = detail.ID
		sub.Status = MapProviderStatus(detail.Status)
		sub.CurrentPeriodStart = detail.CurrentPeriodStart
		sub.CurrentPeriodEnd = detail.CurrentPeriodEnd
		sub.CancelAtPeriodEnd = detail.CancelAtPeriodEnd
		if detail.CustomerID != "" {
			sub.PaddleCustomerID = detail.CustomerID
		}
		if detail.PriceID != "" {
			sub.PaddlePriceID = detail.PriceID
			sub.Tier = s.resolveTier(detail.PriceID, event.Tier)
		}
	}

	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to apply checkout: %w", err)
	}

	log.InfoContext(ctx, "checkout applied",
		logger.UserID(userID.String()),
		logger.Tier(string(sub.Tier)),
	)
	return nil
}

// applySubscriptionUpdated refreshes tier, status, price and period fields
// from the event. Rows already canceled are left alone; deletion is terminal.
func (s *Service) applySubscriptionUpdated(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	if event.SubscriptionID == "" {
		log.WarnContext(ctx, "subscription update without subscription id")
		return nil
	}

	rows, err := s.store.SyncSubscriptionsByProviderID(ctx, event.SubscriptionID, account.SubscriptionSync{
		Tier:               s.catalog.TierForPriceID(event.PriceID),
		Status:             MapProviderStatus(event.Status),
		PaddlePriceID:      event.PriceID,
		CurrentPeriodStart: event.PeriodStart,
		CurrentPeriodEnd:   event.PeriodEnd,
		CancelAtPeriodEnd:  event.CancelAtEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to sync subscription: %w", err)
	}
	if rows == 0 {
		// Unknown or already-canceled subscription; nothing to update.
		log.WarnContext(ctx, "subscription update matched no active rows")
	}
	return nil
}

// applySubscriptionDeleted is the terminal transition: tier drops to free,
// status becomes canceled, and the cancel-at-period-end flag clears.
func (s *Service) applySubscriptionDeleted(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	if event.SubscriptionID == "" {
		log.WarnContext(ctx, "subscription deletion without subscription id")
		return nil
	}

	rows, err := s.store.CancelSubscriptionsByProviderID(ctx, event.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if rows == 0 {
		log.WarnContext(ctx, "subscription deletion matched no rows")
		return nil
	}
	log.InfoContext(ctx, "subscription canceled")
	return nil
}

// applyPaymentFailed flags the subscription past_due. The tier stays as-is;
// access is only lost if the provider later cancels the subscription.
func (s *Service) applyPaymentFailed(ctx context.Context, log *slog.Logger, event *WebhookEvent) error {
	if event.SubscriptionID == "" {
		log.WarnContext(ctx, "payment failure without subscription id")
		return nil
	}

	rows, err := s.store.MarkSubscriptionsPastDueByProviderID(ctx, event.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to mark subscription past due: %w", err)
	}
	if rows == 0 {
		log.WarnContext(ctx, "payment failure matched no rows")
		return nil
	}
	log.WarnContext(ctx, "subscription marked past due")
	return nil
}

// resolveTier prefers the catalog's price-to-tier mapping; when the event
// carries no price id, it falls back to the tier echoed through checkout
// metadata, validated against the closed enumeration.
func (s *Service) resolveTier(priceID, metadataTier string) tier.Tier {
	if priceID != "" {
		return s.catalog.TierForPriceID(priceID)
	}
	if t := tier.Tier(metadataTier); t.IsValid() {
		return t
	}
	return tier.Free
}
