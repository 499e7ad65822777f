// Package session implements cookie-referenced server-side sessions.
//
// A session is an opaque random token stored in an HttpOnly cookie; all
// session state lives in a Store (in-memory for development, Redis for
// multi-instance deployments). The cookie never carries user data, so no
// cookie encryption is required.
package session
