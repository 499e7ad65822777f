package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toolforgehq/toolforge/internal/auth"
	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/internal/tool"
)

type toolResponse struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	RequiredTier string `json:"required_tier"`
	Accessible   bool   `json:"accessible"`
}

func (h *Handler) toolResponse(t tool.Tool, userTier tier.Tier) toolResponse {
	return toolResponse{
		Slug:         t.Slug,
		Name:         t.Name,
		Description:  t.Description,
		Category:     t.Category,
		Status:       string(t.Status),
		RequiredTier: string(t.RequiredTier),
		Accessible:   tier.CanAccess(userTier, t.RequiredTier),
	}
}

// handleListTools returns the catalog. Public: anonymous callers see every
// tool with accessible=false beyond the free tier, which is what the
// marketing pages render. An optional status query filters release states.
func (h *Handler) handleListTools(w http.ResponseWriter, r *http.Request) {
	userTier := tier.Free
	if ident := identityFrom(r.Context()); ident != nil {
		userTier = ident.Tier
	}

	status := tool.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		h.respondError(w, r, ErrBadRequest)
		return
	}

	tools := h.tools.List(status)
	out := make([]toolResponse, 0, len(tools))
	for _, t := range tools {
		out = append(out, h.toolResponse(t, userTier))
	}
	respondJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// handleGetTool is the gated tool entry point: 401 for anonymous callers,
// 403 with the required tier for authenticated users below it. A successful
// open is recorded as usage.
func (h *Handler) handleGetTool(w http.ResponseWriter, r *http.Request) {
	t, ident, ok := h.gateTool(w, r)
	if !ok {
		return
	}

	h.usage.Record(ident.UserID, t.Slug, "open")
	respondJSON(w, http.StatusOK, h.toolResponse(t, ident.Tier))
}

type toolActionRequest struct {
	Action string `json:"action" validate:"required,max=64"`
}

// handleToolAction records a labeled in-tool action, subject to the same
// gate as opening the tool.
func (h *Handler) handleToolAction(w http.ResponseWriter, r *http.Request) {
	t, ident, ok := h.gateTool(w, r)
	if !ok {
		return
	}

	var req toolActionRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.usage.Record(ident.UserID, t.Slug, req.Action)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// gateTool resolves the slug and enforces authentication and tier access.
// On failure it has already written the response.
func (h *Handler) gateTool(w http.ResponseWriter, r *http.Request) (tool.Tool, *auth.Identity, bool) {
	t, err := h.tools.BySlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.respondError(w, r, err)
		return tool.Tool{}, nil, false
	}

	ident := identityFrom(r.Context())
	if ident == nil {
		h.respondError(w, r, ErrUnauthorized)
		return tool.Tool{}, nil, false
	}

	if !tier.CanAccess(ident.Tier, t.RequiredTier) {
		h.respondError(w, r, ErrForbidden.WithDetails(map[string]any{
			"required_tier": string(t.RequiredTier),
			"current_tier":  string(ident.Tier),
		}))
		return tool.Tool{}, nil, false
	}

	return t, ident, true
}
