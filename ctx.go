package auth

import "context"

type contextKey struct{ name string }

var userContextKey = &contextKey{"auth:user"}

// WithContext returns a context carrying the authenticated user.
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext recovers the authenticated user set by the middleware.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok
}
