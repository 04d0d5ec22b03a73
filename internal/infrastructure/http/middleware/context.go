package middleware

import (
	"context"

	"github.com/jsmuster/isstrack/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser injects the authenticated user id into the context.
func WithUser(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserFromContext returns the authenticated user id; ok is false on an
// unauthenticated request.
func UserFromContext(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(userContextKey).(domain.UserID)
	return id, ok
}
