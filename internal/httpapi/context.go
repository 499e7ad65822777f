package httpapi

import (
	"context"

	"github.com/toolforgehq/toolforge/internal/auth"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// withIdentity stores the resolved identity on the request context.
func withIdentity(ctx context.Context, ident *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// identityFrom returns the request identity, or nil for anonymous requests.
func identityFrom(ctx context.Context) *auth.Identity {
	ident, _ := ctx.Value(identityKey).(*auth.Identity)
	return ident
}
