package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

func (h *Handler) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:    u.ID.String(),
			Email: u.Email,
			Name:  u.Name,
			Role:  string(u.Role),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": out})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (h *Handler) handleAdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, ErrBadRequest)
		return
	}

	var req updateRoleRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	// Admins cannot demote themselves; the console must never lock out its
	// last operator.
	if ident := identityFrom(r.Context()); ident.UserID == id && account.Role(req.Role) != account.RoleAdmin {
		h.respondError(w, r, ErrConflict.WithDetails(map[string]any{"reason": "cannot_demote_self"}))
		return
	}

	if err := h.store.UpdateUserRole(r.Context(), id, account.Role(req.Role)); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "user role updated",
		logger.UserID(id.String()),
		logger.Role(req.Role),
	)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAdminListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListSubscriptions(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (h *Handler) handleAdminUsage(w http.ResponseWriter, r *http.Request) {
	byTool, err := h.store.UsageByTool(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	byUser, err := h.store.UsageByUser(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"by_tool": byTool,
		"by_user": byUser,
	})
}

func (h *Handler) handleAdminListContact(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListContactSubmissions(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *Handler) handleAdminMarkContactRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, r, ErrBadRequest)
		return
	}

	if err := h.store.MarkContactSubmissionRead(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminSaveTool accepts a tool edit but persists nothing: the catalog
// is deploy-time content, so the console acknowledges with 202 and the change
// ships through configuration.
func (h *Handler) handleAdminSaveTool(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if _, err := h.tools.BySlug(slug); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "tool edit acknowledged", logger.ToolSlug(slug))
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"note":   "tool catalog changes are applied via configuration deploys",
	})
}
