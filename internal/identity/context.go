package identity

import "context"

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// ContextResolver resolves the acting user from the request context,
// where the transport's auth middleware placed it.
type ContextResolver struct{}

// CurrentUserID returns the user id stored in ctx.
func (ContextResolver) CurrentUserID(ctx context.Context) (int, error) {
	id, ok := ctx.Value(contextKey{}).(int)
	if !ok || id <= 0 {
		return 0, ErrUnauthorized
	}
	return id, nil
}
