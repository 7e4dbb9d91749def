// pkg/utils/ctxutils.go

package utils

import (
	"context"

	"maintenance-system/pkg/contextkeys"
	apperrors "maintenance-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUnauthorized
	}
	return role, nil
}

// GetTechnicianIDFromCtx возвращает nil, если пользователь не привязан к технику.
func GetTechnicianIDFromCtx(ctx context.Context) *uint64 {
	techID, ok := ctx.Value(contextkeys.TechnicianIDKey).(*uint64)
	if !ok {
		return nil
	}
	return techID
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}

// WithActor кладёт данные пользователя в контекст. Используется middleware и фоновыми задачами.
func WithActor(ctx context.Context, userID uint64, role string, technicianID *uint64) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	ctx = context.WithValue(ctx, contextkeys.TechnicianIDKey, technicianID)
	return ctx
}
