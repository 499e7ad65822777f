package billing

import "errors"

var (
	// ErrInvalidTier is returned when checkout is requested for a tier with no
	// catalog entry or no configured provider price.
	ErrInvalidTier = errors.New("billing: invalid tier")

	// ErrNoBillingAccount is returned when portal creation is requested for a
	// user without a stored provider customer reference.
	ErrNoBillingAccount = errors.New("billing: no billing account")

	// ErrInvalidSignature is returned for webhook requests that fail
	// authentication. Handlers must reject these before any state mutation.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")

	// ErrMalformedEvent is returned for authenticated payloads that cannot be
	// decoded.
	ErrMalformedEvent = errors.New("billing: malformed webhook event")

	// ErrProviderError wraps failures from the payment provider API.
	ErrProviderError = errors.New("billing: provider error")
)
