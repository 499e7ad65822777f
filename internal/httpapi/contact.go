package httpapi

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/pkg/email"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

type contactRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	InquiryType string `json:"inquiry_type" validate:"omitempty,oneof=general support sales feedback"`
	Message     string `json:"message" validate:"required,max=5000"`
}

// handleContact persists a public contact form submission. The admin
// notification email is best-effort: a mail outage must not lose the
// submission or fail the request.
func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := h.decodeRequest(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.InquiryType == "" {
		req.InquiryType = "general"
	}

	sub := &account.ContactSubmission{
		Name:        req.Name,
		Email:       req.Email,
		InquiryType: req.InquiryType,
		Message:     req.Message,
	}
	if err := h.store.CreateContactSubmission(r.Context(), sub); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.notifyContact(sub)

	respondJSON(w, http.StatusCreated, map[string]any{"id": sub.ID, "status": "received"})
}

func (h *Handler) notifyContact(sub *account.ContactSubmission) {
	if h.mailer == nil || h.contactInbox == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := h.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:  h.contactInbox,
			Subject: fmt.Sprintf("New %s inquiry from %s", sub.InquiryType, sub.Name),
			BodyHTML: fmt.Sprintf("<p><strong>%s</strong> (%s)</p><p>%s</p>",
				html.EscapeString(sub.Name), html.EscapeString(sub.Email), html.EscapeString(sub.Message)),
			Tag: "contact-notification",
		})
		if err != nil {
			h.log.Error("failed to send contact notification", logger.Error(err))
		}
	}()
}
