package auth

import (
	"context"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext retrieves the verified token claims from context.
// Returns nil for requests that did not pass RequirePermission.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// WithClaims adds verified claims to the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
