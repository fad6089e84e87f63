// Package auth, context plumbing. The request context is the standard way in Go
// to carry request-scoped values across middleware and handlers, and it is how
// the guard middleware hands the resolved identity to the protected handlers.
package auth

import (
	"context"
)

// Identity is the caller resolved from a verified credential. It exists for
// one request only and is never constructed from client-supplied fields.
type Identity struct {
	UserID int
}

// contextKey is a custom type for context keys. Using a private type prevents
// collisions with context keys defined in other packages.
type contextKey string

const (
	// identityContextKey is the key under which the resolved Identity is stored.
	identityContextKey contextKey = "auth_identity"
)

// NewContextWithIdentity returns a child context carrying the resolved identity.
func NewContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the Identity stored by the guard middleware.
// The second return value indicates whether an identity was present; handlers
// behind the middleware treat a missing identity as a wiring bug and refuse
// the request.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}
