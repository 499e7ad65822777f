package httpapi

import (
	"net/http"
	"net/url"
	"strings"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// handleRegister creates an account plus its free subscription and signs the
// user in immediately.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.password.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.sessions.Authenticate(r.Context(), w, user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.password.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.sessions.Authenticate(r.Context(), w, user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// handleForgotPassword always answers 202 so the endpoint cannot be used to
// probe registered emails.
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.password.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.password.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGoogleBegin redirects to Google's consent screen. The optional
// redirect query survives the round trip; only local paths are accepted.
func (h *Handler) handleGoogleBegin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.respondError(w, r, ErrNotFound)
		return
	}

	redirect := r.URL.Query().Get("redirect")
	if !isLocalPath(redirect) {
		redirect = "/"
	}

	authURL, err := h.google.Begin(redirect)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Handler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.respondError(w, r, ErrNotFound)
		return
	}

	q := r.URL.Query()
	user, redirect, err := h.google.Callback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.sessions.Authenticate(r.Context(), w, user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if !isLocalPath(redirect) {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// isLocalPath accepts only same-origin absolute paths, blocking open
// redirects through the OAuth flow.
func isLocalPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Host == "" && u.Scheme == ""
}
