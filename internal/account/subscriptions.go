package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/pkg/pg"
)

const subscriptionColumns = `user_id, tier, status, paddle_customer_id, paddle_subscription_id,
	paddle_price_id, current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at`

// GetSubscription returns the subscription for a user.
func (s *Store) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	var sub Subscription
	err := s.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID,
	).Scan(
		&sub.UserID, &sub.Tier, &sub.Status, &sub.PaddleCustomerID, &sub.PaddleSubscriptionID,
		&sub.PaddlePriceID, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// UpsertSubscription overwrites the subscription row for sub.UserID, creating
// it if the registration-time row is somehow missing. Called by the
// checkout-completed webhook handler only.
func (s *Store) UpsertSubscription(ctx context.Context, sub *Subscription) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		INSERT INTO subscriptions (user_id, tier, status, paddle_customer_id, paddle_subscription_id,
			paddle_price_id, current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			paddle_customer_id = EXCLUDED.paddle_customer_id,
			paddle_subscription_id = EXCLUDED.paddle_subscription_id,
			paddle_price_id = EXCLUDED.paddle_price_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			updated_at = EXCLUDED.updated_at`,
		sub.UserID, sub.Tier, sub.Status, sub.PaddleCustomerID, sub.PaddleSubscriptionID,
		sub.PaddlePriceID, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// SubscriptionSync carries the fields refreshed by a subscription-updated
// webhook event.
type SubscriptionSync struct {
	Tier               tier.Tier
	Status             SubscriptionStatus
	PaddlePriceID      string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// SyncSubscriptionsByProviderID refreshes all subscription rows matching a
// provider subscription id. Canceled rows are skipped: deletion is terminal,
// so a late "updated" event must not resurrect a canceled subscription.
// Returns the number of rows updated.
func (s *Store) SyncSubscriptionsByProviderID(ctx context.Context, providerSubID string, upd SubscriptionSync) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE subscriptions SET
			tier = $2,
			status = $3,
			paddle_price_id = $4,
			current_period_start = $5,
			current_period_end = $6,
			cancel_at_period_end = $7,
			updated_at = now()
		WHERE paddle_subscription_id = $1 AND status <> $8`,
		providerSubID, upd.Tier, upd.Status, upd.PaddlePriceID,
		upd.CurrentPeriodStart, upd.CurrentPeriodEnd, upd.CancelAtPeriodEnd, StatusCanceled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sync subscription: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CancelSubscriptionsByProviderID forces matching rows to free/canceled and
// clears the cancel-at-period-end flag. Called by the subscription-deleted
// webhook handler only.
func (s *Store) CancelSubscriptionsByProviderID(ctx context.Context, providerSubID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE subscriptions SET
			tier = $2,
			status = $3,
			cancel_at_period_end = FALSE,
			updated_at = now()
		WHERE paddle_subscription_id = $1`,
		providerSubID, tier.Free, StatusCanceled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkSubscriptionsPastDueByProviderID sets matching rows to past_due without
// touching the tier. Called by the payment-failed webhook handler only.
func (s *Store) MarkSubscriptionsPastDueByProviderID(ctx context.Context, providerSubID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = now()
		WHERE paddle_subscription_id = $1`,
		providerSubID, StatusPastDue,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark subscription past due: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListSubscriptions returns all subscription rows for the admin console.
func (s *Store) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := s.db.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(
			&sub.UserID, &sub.Tier, &sub.Status, &sub.PaddleCustomerID, &sub.PaddleSubscriptionID,
			&sub.PaddlePriceID, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
			&sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
