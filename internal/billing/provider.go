package billing

import (
	"context"
	"time"
)

// Provider defines the payment provider integration surface. The provider
// handles all payment complexity through hosted checkouts and customer
// portals; this service never touches card data.
type Provider interface {
	// CreateCheckout creates a hosted checkout session. Metadata must round-trip
	// through the provider so the webhook handler can read it back.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// CreatePortal returns a temporary link to the provider's customer portal.
	CreatePortal(ctx context.Context, customerID string) (*PortalSession, error)

	// GetSubscription fetches the provider's current view of a subscription.
	GetSubscription(ctx context.Context, providerSubID string) (*ProviderSubscription, error)

	// ParseWebhook authenticates the raw payload against the signature and
	// returns the normalized event. Returns ErrInvalidSignature before any
	// payload inspection if authentication fails.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier for the requested tier
	UserID     string // internal user id, echoed back via webhook metadata
	Tier       string // requested tier, echoed back via webhook metadata
	Email      string // pre-fill billing email if known
	SuccessURL string // redirect after successful payment
}

// CheckoutSession represents a hosted checkout session.
type CheckoutSession struct {
	URL       string    // hosted checkout URL
	SessionID string    // provider's session identifier
	ExpiresAt time.Time // link expiration
}

// PortalSession represents a customer portal session.
type PortalSession struct {
	URL       string
	ExpiresAt time.Time
}

// ProviderSubscription is the provider's view of a subscription, fetched on
// checkout completion to populate the local row.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string // provider status string, mapped via MapProviderStatus
	PriceID            string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// EventType is the normalized billing event type.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout_completed"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"
	EventPaymentFailed       EventType = "payment_failed"
)

// WebhookEvent is a normalized, signature-verified webhook event.
// Unrecognized provider events keep their raw name as Type and are logged
// without any state change.
type WebhookEvent struct {
	Type           EventType
	ProviderEvent  string // original provider event name
	SubscriptionID string // provider's subscription id
	CustomerID     string // provider's customer id
	UserID         string // internal user id from checkout metadata
	Tier           string // requested tier from checkout metadata
	PriceID        string // provider price id on the event
	Status         string // provider status string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	CancelAtEnd    bool
}

// IsHandled reports whether the event type participates in state sync.
func (e *WebhookEvent) IsHandled() bool {
	switch e.Type {
	case EventCheckoutCompleted, EventSubscriptionUpdated, EventSubscriptionDeleted, EventPaymentFailed:
		return true
	}
	return false
}
