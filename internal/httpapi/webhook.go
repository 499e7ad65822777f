package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

const maxWebhookBytes = 2 << 20

// Rejected webhooks all get the same body; whether the signature or the
// payload was at fault stays in the logs.
var errWebhookRejected = NewHTTPError(http.StatusBadRequest, "webhook_rejected")

// handlePaddleWebhook receives billing events. 400 means the request itself
// is bad and must not be retried; 200 acknowledges the event even when it
// referenced nothing locally; 5xx asks the provider to retry after a
// transient failure.
func (h *Handler) handlePaddleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.respondError(w, r, errWebhookRejected)
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Paddle-Signature")); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) || errors.Is(err, billing.ErrMalformedEvent) {
			h.log.WarnContext(r.Context(), "webhook rejected", logger.Error(err))
			h.respondError(w, r, errWebhookRejected)
			return
		}
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
