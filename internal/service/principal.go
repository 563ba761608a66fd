package service

import "context"

// Principal is the authenticated caller, if any.
type Principal struct {
	UserID  uint
	IsAdmin bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func requireAdmin(ctx context.Context) error {
	if p, ok := PrincipalFrom(ctx); ok && p.IsAdmin {
		return nil
	}
	return ErrAdminRequired
}
