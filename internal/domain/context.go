package domain

import "context"

type accountCtxKey struct{}

// WithAccount attaches the authenticated account to ctx.
func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, a)
}

// AccountFrom returns the account attached by the identity gate.
func AccountFrom(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(accountCtxKey{}).(Account)
	return a, ok
}
