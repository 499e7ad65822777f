package auth

import "errors"

var (
	// ErrInvalidCredentials covers every password-login failure mode: unknown
	// email, wrong password, OAuth-only account. Callers must not distinguish
	// them, to avoid account enumeration.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrEmailTaken is returned on registration with an already-registered email.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrWeakPassword is returned when a password fails the minimum length check.
	ErrWeakPassword = errors.New("auth: password too weak")

	// ErrInvalidToken is returned for unknown, expired or already-used password
	// reset tokens.
	ErrInvalidToken = errors.New("auth: invalid or expired token")

	// ErrInvalidState is returned when an OAuth callback carries an unknown or
	// expired state parameter.
	ErrInvalidState = errors.New("auth: invalid oauth state")

	// ErrEmailLinkedElsewhere is returned when an OAuth login resolves to an
	// email that already belongs to a non-OAuth account.
	ErrEmailLinkedElsewhere = errors.New("auth: email belongs to another account")

	// ErrOAuthExchange wraps provider-side failures during the OAuth code
	// exchange or userinfo fetch.
	ErrOAuthExchange = errors.New("auth: oauth exchange failed")
)
