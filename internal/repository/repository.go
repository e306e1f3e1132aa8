package repository

import (
	"context"
	"embed"

	"ronin-novel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MigrationsFS содержит SQL миграции схемы сервиса.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsPath — каталог миграций внутри MigrationsFS.
const MigrationsPath = "migrations"

// DBTX — общий интерфейс для *pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionRepository хранит сохранения игроков.
type SessionRepository interface {
	// Create сохраняет новое прохождение. Пустой ID генерируется, Version становится 1.
	Create(ctx context.Context, session *models.PlayerSession) error
	// GetByID возвращает models.ErrNotFound, если записи нет.
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error)
	// ListByPlayer возвращает сохранения игрока, последние по активности первыми.
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.PlayerSession, error)
	// Update сохраняет состояние, если Version совпадает с хранимой, и увеличивает session.Version.
	// Иначе возвращает models.ErrConcurrentUpdate (или models.ErrNotFound, если записи нет).
	Update(ctx context.Context, session *models.PlayerSession) error
	// Delete удаляет сохранение игрока. models.ErrNotFound, если нечего удалять.
	Delete(ctx context.Context, id uuid.UUID, playerID uuid.UUID) error
}

// SessionCache — кэш сохранений перед основным хранилищем.
type SessionCache interface {
	// Get возвращает ErrCacheMiss, если записи нет.
	Get(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error)
	Set(ctx context.Context, session *models.PlayerSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}
