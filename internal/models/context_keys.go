package models

import (
	"context"

	"github.com/google/uuid"
)

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

// UserContextKey используется как ключ для хранения ID игрока в контексте запроса.
const UserContextKey contextKey = "userID"

// WithUserID кладет ID игрока в контекст.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// GetUserIDFromContext извлекает ID игрока из контекста.
// Возвращает uuid.Nil и false, если ключа нет или тип не тот.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserContextKey).(uuid.UUID)
	return userID, ok
}
