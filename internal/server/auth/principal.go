package auth

import "context"

// Principal is the identity attached to a request after its bearer token
// validated. It lives for one request only.
type Principal struct {
	Username    string
	Authorities []string
}

type ctxKey struct{}

var principalKey = ctxKey{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
