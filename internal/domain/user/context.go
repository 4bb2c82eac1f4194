package user

import "context"

type contextKey struct{}

// WithCaller stores the caller on ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, error) {
	c, ok := ctx.Value(contextKey{}).(Caller)
	if !ok || c.UserID == "" {
		return Caller{}, ErrCallerMissing
	}
	return c, nil
}
