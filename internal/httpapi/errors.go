package httpapi

import (
	"errors"
	"net/http"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/auth"
	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/internal/tool"
)

// HTTPError is a status code plus a stable machine-readable key. Keys are
// part of the API contract; clients switch on them, not on message text.
type HTTPError struct {
	Code    int            `json:"-"`
	Key     string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

// WithDetails returns a copy carrying extra response fields.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "validation_failed"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// NewHTTPError creates a custom HTTP error.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

// mapError converts domain errors into the HTTP taxonomy. Anything unmapped
// becomes a 500 with no detail leaked to the client.
func mapError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, auth.ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, "email_taken")
	case errors.Is(err, auth.ErrWeakPassword):
		return NewHTTPError(http.StatusUnprocessableEntity, "password_too_weak")
	case errors.Is(err, auth.ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, "invalid_token")
	case errors.Is(err, auth.ErrInvalidState):
		return NewHTTPError(http.StatusBadRequest, "invalid_oauth_state")
	case errors.Is(err, auth.ErrEmailLinkedElsewhere):
		return NewHTTPError(http.StatusConflict, "email_taken")
	case errors.Is(err, billing.ErrInvalidTier):
		return NewHTTPError(http.StatusBadRequest, "invalid_tier")
	case errors.Is(err, billing.ErrNoBillingAccount):
		return NewHTTPError(http.StatusBadRequest, "no_billing_account")
	case errors.Is(err, tool.ErrToolNotFound):
		return ErrNotFound
	case errors.Is(err, account.ErrUserNotFound),
		errors.Is(err, account.ErrSubmissionNotFound),
		errors.Is(err, account.ErrSubscriptionNotFound):
		return ErrNotFound
	default:
		return ErrInternalServerError
	}
}
