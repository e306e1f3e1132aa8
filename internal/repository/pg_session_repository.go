package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ronin-novel/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	playerSessionFields = `id, player_id, current_scene_id, displayed_scene_id, history, inventory, ended, version, started_at, last_activity_at, completed_at`

	insertPlayerSessionQuery = `
        INSERT INTO player_sessions (` + playerSessionFields + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	updatePlayerSessionQuery = `
        UPDATE player_sessions SET
            current_scene_id = $3,
            displayed_scene_id = $4,
            history = $5,
            inventory = $6,
            ended = $7,
            last_activity_at = $8,
            completed_at = $9,
            version = version + 1
            -- player_id и started_at не меняются
        WHERE id = $1 AND version = $2
        RETURNING version
    `
	getPlayerSessionByIDQuery = `
        SELECT ` + playerSessionFields + `
        FROM player_sessions
        WHERE id = $1
    `
	listPlayerSessionsByPlayerQuery = `
        SELECT ` + playerSessionFields + `
        FROM player_sessions
        WHERE player_id = $1
        ORDER BY last_activity_at DESC
    `
	playerSessionExistsQuery = `SELECT EXISTS(SELECT 1 FROM player_sessions WHERE id = $1)`
	deletePlayerSessionQuery = `DELETE FROM player_sessions WHERE id = $1 AND player_id = $2`
)

// Compile-time check to ensure pgSessionRepository implements the interface
var _ SessionRepository = (*pgSessionRepository)(nil)

// pgSessionRepository is the PostgreSQL implementation of SessionRepository
type pgSessionRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgSessionRepository creates a new repository instance.
func NewPgSessionRepository(db DBTX, logger *zap.Logger) SessionRepository {
	return &pgSessionRepository{
		db:     db,
		logger: logger.Named("PgSessionRepo"),
	}
}

func (r *pgSessionRepository) Create(ctx context.Context, session *models.PlayerSession) error {
	now := time.Now().UTC()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.Version = 1
	session.StartedAt = now
	session.LastActivityAt = now

	log := r.logger.With(zap.Stringer("gameID", session.ID), zap.Stringer("playerID", session.PlayerID))
	log.Debug("Inserting new player session")

	_, err := r.db.Exec(ctx, insertPlayerSessionQuery,
		session.ID,
		session.PlayerID,
		session.CurrentSceneID,
		session.DisplayedSceneID,
		nonNil(session.History),
		nonNil(session.Inventory),
		session.Ended,
		session.Version,
		session.StartedAt,
		session.LastActivityAt,
		session.CompletedAt,
	)
	if err != nil {
		log.Error("Failed to insert player session", zap.Error(err))
		return fmt.Errorf("failed to insert player session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	var session models.PlayerSession
	if err := pgxscan.Get(ctx, r.db, &session, getPlayerSessionByIDQuery, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get player session", zap.Stringer("gameID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get player session %s: %w", id, err)
	}
	return &session, nil
}

func (r *pgSessionRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.PlayerSession, error) {
	sessions := make([]*models.PlayerSession, 0)
	if err := pgxscan.Select(ctx, r.db, &sessions, listPlayerSessionsByPlayerQuery, playerID); err != nil {
		r.logger.Error("Failed to list player sessions", zap.Stringer("playerID", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list player sessions: %w", err)
	}
	return sessions, nil
}

func (r *pgSessionRepository) Update(ctx context.Context, session *models.PlayerSession) error {
	log := r.logger.With(zap.Stringer("gameID", session.ID), zap.Int("expectedVersion", session.Version))
	now := time.Now().UTC()

	var newVersion int
	err := r.db.QueryRow(ctx, updatePlayerSessionQuery,
		session.ID,
		session.Version,
		session.CurrentSceneID,
		session.DisplayedSceneID,
		nonNil(session.History),
		nonNil(session.Inventory),
		session.Ended,
		now,
		session.CompletedAt,
	).Scan(&newVersion)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Error("Failed to update player session", zap.Error(err))
			return fmt.Errorf("failed to update player session: %w", err)
		}
		// Строка не обновилась: либо записи нет, либо версия устарела
		var exists bool
		if existsErr := r.db.QueryRow(ctx, playerSessionExistsQuery, session.ID).Scan(&exists); existsErr != nil {
			log.Error("Failed to check player session existence", zap.Error(existsErr))
			return fmt.Errorf("failed to check player session existence: %w", existsErr)
		}
		if !exists {
			return models.ErrNotFound
		}
		log.Warn("Player session version conflict")
		return models.ErrConcurrentUpdate
	}

	session.Version = newVersion
	session.LastActivityAt = now
	log.Debug("Player session updated", zap.Int("version", newVersion))
	return nil
}

func (r *pgSessionRepository) Delete(ctx context.Context, id uuid.UUID, playerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deletePlayerSessionQuery, id, playerID)
	if err != nil {
		r.logger.Error("Failed to delete player session", zap.Stringer("gameID", id), zap.Error(err))
		return fmt.Errorf("failed to delete player session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// nonNil нужен, чтобы не писать NULL в NOT NULL колонки-массивы.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
