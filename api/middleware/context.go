package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/internal/authz"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor from context values. The
// zero Actor means the request never passed the auth middleware.
func ActorFromContext(ctx context.Context) authz.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return authz.Actor{}
	}
	return authz.Actor{UserID: id, Role: enums.UserRole(RoleFromContext(ctx))}
}

// WithActor injects the actor's identity into the context.
func WithActor(ctx context.Context, userID string, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
