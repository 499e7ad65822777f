package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/tier"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SubscriptionStatus is the internal billing status of a subscription.
// It is a closed enumeration; provider statuses are mapped onto it and
// anything unrecognized collapses to StatusInactive.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusUnpaid   SubscriptionStatus = "unpaid"
	StatusInactive SubscriptionStatus = "inactive"
)

// User is an identity record. Users are never hard-deleted.
type User struct {
	ID              uuid.UUID
	Email           string // unique, case-normalized
	Name            string
	PasswordHash    []byte // nil for OAuth-only accounts
	Role            Role
	OAuthProvider   string // empty for password accounts
	OAuthProviderID string
	CreatedAt       time.Time
}

// Subscription is the billing state for exactly one user, keyed by user ID.
// Tier and status are written only by registration and the webhook handlers;
// no other code path may mutate them.
type Subscription struct {
	UserID               uuid.UUID
	Tier                 tier.Tier
	Status               SubscriptionStatus
	PaddleCustomerID     string
	PaddleSubscriptionID string
	PaddlePriceID        string
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ToolUsageEvent is an append-only usage log row. Only aggregate counts are
// ever read back.
type ToolUsageEvent struct {
	ID        int64
	UserID    uuid.UUID
	ToolSlug  string
	Action    string
	CreatedAt time.Time
}

// ToolUsageCount is an aggregate over usage events.
type ToolUsageCount struct {
	ToolSlug string
	Count    int64
}

// UserUsageCount aggregates usage events per user.
type UserUsageCount struct {
	UserID uuid.UUID
	Count  int64
}

// ContactSubmission is an inbound message from the public contact form.
type ContactSubmission struct {
	ID          int64
	Name        string
	Email       string
	InquiryType string
	Message     string
	Read        bool
	CreatedAt   time.Time
}

// PasswordResetToken is a single-use token for the forgot-password flow.
type PasswordResetToken struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}
