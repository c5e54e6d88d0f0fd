// Package context provides request-scoped identity values.
//
// Authentication itself is an external collaborator: callers arrive with a
// bearer token minted elsewhere, and this package only carries the resolved
// "caller with role R" through the request.
package context

import (
	"context"
)

// User contains the authenticated caller identity.
type User struct {
	ID    string
	Name  string
	Roles []string
}

type userKey struct{}

// WithUser adds the caller identity to context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the caller identity from context, or nil.
func GetUser(ctx context.Context) *User {
	if v, ok := ctx.Value(userKey{}).(*User); ok {
		return v
	}
	return nil
}

// GetUserID returns the caller ID from context or empty string.
// Used for audit attribution.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.ID
	}
	return ""
}

// HasRole checks if the caller carries a specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type requestIDKey struct{}

// WithRequestID stores the request correlation ID in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request correlation ID or empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
