package access

import "context"

type principalKey struct{}

// WithPrincipal stores the resolved principal in the request context. Set by
// the auth middleware after session resolution.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom retrieves the resolved principal. The second return is false
// when no auth middleware ran, which handlers treat as an internal error.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
