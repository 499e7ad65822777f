package httpapi

import (
	"net/http"

	"github.com/toolforgehq/toolforge/internal/tier"
)

type checkoutRequest struct {
	Tier string `json:"tier" validate:"required"`
}

// handleCheckout creates a hosted checkout session. JSON clients get the URL
// back; form posts are redirected straight to the provider. Nothing about
// the user's subscription changes here.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())

	var req checkoutRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	session, err := h.billing.CreateCheckout(r.Context(), ident.UserID, ident.Email, tier.Tier(req.Tier))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]string{"checkout_url": session.URL})
		return
	}
	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}

// handlePortal creates a customer portal session for users with billing
// history.
func (h *Handler) handlePortal(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r.Context())

	session, err := h.billing.CreatePortal(r.Context(), ident.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]string{"portal_url": session.URL})
		return
	}
	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}
