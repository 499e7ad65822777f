package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/tier"
)

// Identity is the resolved view of an authenticated user for a single
// request. Tier and status come from the account store at resolution time;
// nothing access-relevant is ever trusted from the client.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   account.Role
	Tier   tier.Tier
	Status account.SubscriptionStatus
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == account.RoleAdmin
}

// IdentityStore is the persistence surface identity resolution needs.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (*account.Subscription, error)
}

// ResolveIdentity loads the user and their current subscription. A missing
// subscription row degrades to the free tier rather than failing the request.
func ResolveIdentity(ctx context.Context, store IdentityStore, userID uuid.UUID) (*Identity, error) {
	user, err := store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	ident := &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Tier:   tier.Free,
		Status: account.StatusInactive,
	}

	sub, err := store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrSubscriptionNotFound) {
			return ident, nil
		}
		return nil, fmt.Errorf("failed to resolve subscription: %w", err)
	}

	ident.Tier = sub.Tier
	ident.Status = sub.Status
	return ident, nil
}
