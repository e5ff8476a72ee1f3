package auth

import (
	"context"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "userContext"

// UserContext carries the authenticated caller through the request context.
type UserContext struct {
	UserID string
	Email  string
}

// SetUserInContext stores the user context in the request context.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext retrieves the user context set by the auth middleware.
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, pkgerrors.NewUnauthorizedError("no user in context")
	}
	return user, nil
}
