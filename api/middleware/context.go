package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "user_role"
)

// UserID returns the authenticated user's id, or uuid.Nil when absent.
func UserID(ctx context.Context) uuid.UUID {
	raw, ok := ctx.Value(ctxUserID).(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Role returns the authenticated user's role, empty when absent.
func Role(ctx context.Context) enums.UserRole {
	raw, ok := ctx.Value(ctxRole).(string)
	if !ok {
		return ""
	}
	return enums.UserRole(raw)
}
