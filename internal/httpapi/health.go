package httpapi

import (
	"context"
	"net/http"
	"time"
)

// handleHealth probes every registered dependency. Any failure turns the
// whole response into 503 so load balancers stop routing here.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "ok"
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	respondJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
