package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the full router. The webhook route sits outside the session
// middleware; everything else resolves the session cookie first.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhooks/paddle", h.handlePaddleWebhook)
	r.Get("/health", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.resolveSession)

		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/logout", h.handleLogout)
		r.Post("/auth/forgot-password", h.handleForgotPassword)
		r.Post("/auth/reset-password", h.handleResetPassword)
		r.Get("/auth/google", h.handleGoogleBegin)
		r.Get("/auth/google/callback", h.handleGoogleCallback)

		r.Post("/contact", h.handleContact)

		r.Get("/tools", h.handleListTools)
		r.Get("/tools/{slug}", h.handleGetTool)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/tools/{slug}/actions", h.handleToolAction)
			r.Post("/billing/checkout", h.handleCheckout)
			r.Post("/billing/portal", h.handlePortal)
			r.Get("/me", h.handleMe)
			r.Get("/me/subscription", h.handleMySubscription)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Get("/users", h.handleAdminListUsers)
			r.Patch("/users/{id}/role", h.handleAdminUpdateRole)
			r.Get("/subscriptions", h.handleAdminListSubscriptions)
			r.Get("/usage", h.handleAdminUsage)
			r.Get("/contact", h.handleAdminListContact)
			r.Post("/contact/{id}/read", h.handleAdminMarkContactRead)
			r.Post("/tools/{slug}", h.handleAdminSaveTool)
		})
	})

	return r
}
