package httpapi

import (
	"net/http"

	"github.com/toolforgehq/toolforge/internal/auth"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

// resolveSession attaches the request identity when a valid session cookie is
// present. Tier and role always come from the store, never from the cookie,
// so a webhook-driven tier change applies on the next request.
func (h *Handler) resolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Get(r.Context(), r)
		if err != nil || !sess.IsAuthenticated() || sess.IsExpired() {
			next.ServeHTTP(w, r)
			return
		}

		ident, err := auth.ResolveIdentity(r.Context(), h.store, *sess.UserID)
		if err != nil {
			// Stale session referencing a missing user; treat as anonymous.
			h.log.WarnContext(r.Context(), "failed to resolve session identity",
				logger.Error(err),
				logger.UserID(sess.UserID),
			)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), ident)))
	})
}

// requireAuth rejects anonymous requests.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()) == nil {
			h.respondError(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects everything but authenticated admins. Non-admins get
// 403, not 404, since the admin prefix itself is not a secret.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := identityFrom(r.Context())
		if ident == nil {
			h.respondError(w, r, ErrUnauthorized)
			return
		}
		if !ident.IsAdmin() {
			h.respondError(w, r, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
