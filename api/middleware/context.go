package middleware

import (
	"context"

	"github.com/qrobotics/qrobotics-backend/pkg/auth"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

// UserIDFromContext returns the authenticated user id, or 0 when the request
// is unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

// PrincipalFromContext bundles the authenticated identity, if any.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	id := UserIDFromContext(ctx)
	if id == 0 {
		return auth.Principal{}, false
	}
	return auth.Principal{UserID: id, Role: RoleFromContext(ctx)}, true
}

// WithPrincipal injects the authenticated identity into the context.
func WithPrincipal(ctx context.Context, userID int64, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
