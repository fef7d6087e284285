// ABOUTME: Caller identity carried through request contexts
// ABOUTME: Provides WithPrincipal/FromContext for the HTTP middleware and handlers

package auth

import "context"

// Principal is the authenticated caller of an HTTP request.
type Principal struct {
	Subject string
}

type principalKey struct{}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller, or nil for anonymous requests.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
