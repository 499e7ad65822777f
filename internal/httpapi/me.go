package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/toolforgehq/toolforge/internal/account"
)

type meResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Tier   string `json:"tier"`
	Status string `json:"status"`
}

// handleMe returns the request identity: who the session belongs to and
// the tier the store currently grants them.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())
	respondJSON(w, http.StatusOK, meResponse{
		ID:     ident.UserID.String(),
		Email:  ident.Email,
		Name:   ident.Name,
		Role:   string(ident.Role),
		Tier:   string(ident.Tier),
		Status: string(ident.Status),
	})
}

type subscriptionResponse struct {
	Tier               string     `json:"tier"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	HasBillingAccount  bool       `json:"has_billing_account"`
}

// handleMySubscription returns the full subscription detail. A user without
// a subscription row is presented as free/inactive rather than 404.
func (h *Handler) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())

	sub, err := h.store.GetSubscription(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, account.ErrSubscriptionNotFound) {
			respondJSON(w, http.StatusOK, subscriptionResponse{
				Tier:   string(ident.Tier),
				Status: string(ident.Status),
			})
			return
		}
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, subscriptionResponse{
		Tier:               string(sub.Tier),
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		HasBillingAccount:  sub.PaddleCustomerID != "",
	})
}
