package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle billing provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("paddle webhook secret is required")
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// CreateCheckout creates a hosted checkout transaction in Paddle. UserID and
// Tier travel through transaction custom data so the webhook can attribute
// the purchase.
func (p *PaddleProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.PriceID == "" {
		return nil, fmt.Errorf("%w: price ID is required", ErrProviderError)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrProviderError)
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	transactionReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"user_id": req.UserID,
			"tier":    req.Tier,
		},
	}
	if req.Email != "" {
		transactionReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return nil, fmt.Errorf("%w: create transaction: %w", ErrProviderError, err)
	}

	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return nil, fmt.Errorf("%w: no checkout URL returned", ErrProviderError)
	}

	return &CheckoutSession{
		URL:       *transaction.Checkout.URL,
		SessionID: transaction.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// CreatePortal returns a link into Paddle's customer portal for the given
// Paddle customer (ctm_*).
func (p *PaddleProvider) CreatePortal(ctx context.Context, customerID string) (*PortalSession, error) {
	if customerID == "" {
		return nil, ErrNoBillingAccount
	}

	portalSession, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create portal session: %w", ErrProviderError, err)
	}

	if portalSession.URLs.General.Overview == "" {
		return nil, fmt.Errorf("%w: no portal URL returned", ErrProviderError)
	}

	return &PortalSession{
		URL:       portalSession.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetSubscription fetches the current subscription state from Paddle.
func (p *PaddleProvider) GetSubscription(ctx context.Context, providerSubID string) (*ProviderSubscription, error) {
	if providerSubID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrProviderError)
	}

	sub, err := p.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: providerSubID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get subscription: %w", ErrProviderError, err)
	}

	out := &ProviderSubscription{
		ID:         sub.ID,
		CustomerID: sub.CustomerID,
		Status:     string(sub.Status),
	}
	if len(sub.Items) > 0 {
		out.PriceID = sub.Items[0].Price.ID
	}
	if sub.CurrentBillingPeriod != nil {
		out.CurrentPeriodStart = parsePaddleTime(sub.CurrentBillingPeriod.StartsAt)
		out.CurrentPeriodEnd = parsePaddleTime(sub.CurrentBillingPeriod.EndsAt)
	}
	if sub.ScheduledChange != nil && sub.ScheduledChange.Action == paddle.ScheduledChangeActionCancel {
		out.CancelAtPeriodEnd = true
	}
	return out, nil
}

// ParseWebhook verifies the Paddle-Signature header and normalizes the event.
// The verifier consumes an http.Request, so one is reconstructed around the
// raw payload.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var paddleEvent struct {
		EventID   string         `json:"event_id"`
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &paddleEvent); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if paddleEvent.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	}

	event := &WebhookEvent{
		Type:          mapPaddleEventType(paddleEvent.EventType),
		ProviderEvent: paddleEvent.EventType,
	}
	data := paddleEvent.Data

	if status, ok := data["status"].(string); ok {
		event.Status = status
	}
	if customerID, ok := data["customer_id"].(string); ok {
		event.CustomerID = customerID
	}
	if customData, ok := data["custom_data"].(map[string]any); ok {
		if userID, ok := customData["user_id"].(string); ok {
			event.UserID = userID
		}
		if tier, ok := customData["tier"].(string); ok {
			event.Tier = tier
		}
	}

	switch {
	case strings.HasPrefix(paddleEvent.EventType, "subscription."):
		if subID, ok := data["id"].(string); ok {
			event.SubscriptionID = subID
		}
		if items, ok := data["items"].([]any); ok && len(items) > 0 {
			if item, ok := items[0].(map[string]any); ok {
				if price, ok := item["price"].(map[string]any); ok {
					if priceID, ok := price["id"].(string); ok {
						event.PriceID = priceID
					}
				}
			}
		}
		if period, ok := data["current_billing_period"].(map[string]any); ok {
			if starts, ok := period["starts_at"].(string); ok {
				event.PeriodStart = parsePaddleTime(starts)
			}
			if ends, ok := period["ends_at"].(string); ok {
				event.PeriodEnd = parsePaddleTime(ends)
			}
		}
		if change, ok := data["scheduled_change"].(map[string]any); ok {
			if action, ok := change["action"].(string); ok && action == "cancel" {
				event.CancelAtEnd = true
			}
		}

	case strings.HasPrefix(paddleEvent.EventType, "transaction."):
		// Transactions reference their subscription; that is the id state
		// sync keys on.
		if subID, ok := data["subscription_id"].(string); ok {
			event.SubscriptionID = subID
		}
		if items, ok := data["items"].([]any); ok && len(items) > 0 {
			if item, ok := items[0].(map[string]any); ok {
				if priceID, ok := item["price_id"].(string); ok {
					event.PriceID = priceID
				}
			}
		}
	}

	return event, nil
}

func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "transaction.completed":
		return EventCheckoutCompleted
	case "subscription.updated":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionDeleted
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		// Keep the original name so it can be logged and acknowledged.
		return EventType(paddleEvent)
	}
}

func parsePaddleTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
