package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/toolforgehq/toolforge/pkg/logger"
)

const maxBodyBytes = 1 << 20

// respondJSON writes v as a JSON response. Encoding failures at this point
// can only be programming errors, so they are logged and the connection left
// to die.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps err onto the HTTP taxonomy and writes it. 5xx causes are
// logged server-side only.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := mapError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			slog.String("path", r.URL.Path),
		)
	}
	respondJSON(w, httpErr.Code, httpErr)
}

// decodeRequest fills dst from a JSON body or an HTML form, then validates
// struct tags. Validation failures surface field names in the error details.
func (h *Handler) decodeRequest(r *http.Request, dst any) error {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case strings.HasSuffix(contentType, "json"):
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return ErrBadRequest
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return ErrBadRequest
		}
	case contentType == "application/x-www-form-urlencoded" || strings.HasPrefix(contentType, "multipart/"):
		if err := r.ParseForm(); err != nil {
			return ErrBadRequest
		}
		if err := decodeForm(r, dst); err != nil {
			return ErrBadRequest
		}
	default:
		return ErrBadRequest
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return ErrUnprocessableEntity.WithDetails(map[string]any{"fields": fields})
		}
		return ErrUnprocessableEntity
	}
	return nil
}

// wantsJSON reports whether the client expects a JSON response rather than a
// redirect. JSON requests and explicit Accept headers get JSON; plain form
// posts get redirects.
func wantsJSON(r *http.Request) bool {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasSuffix(contentType, "json") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json")
}
