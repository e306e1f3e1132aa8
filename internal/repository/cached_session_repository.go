package repository

import (
	"context"
	"errors"

	"ronin-novel/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure cachedSessionRepository implements SessionRepository
var _ SessionRepository = (*cachedSessionRepository)(nil)

// cachedSessionRepository читает через кэш и пишет в основное хранилище, обновляя кэш.
// Ошибки кэша только логируются: источник истины - основное хранилище.
type cachedSessionRepository struct {
	store  SessionRepository
	cache  SessionCache
	logger *zap.Logger
}

// NewCachedSessionRepository оборачивает store кэшем.
func NewCachedSessionRepository(store SessionRepository, cache SessionCache, logger *zap.Logger) SessionRepository {
	return &cachedSessionRepository{
		store:  store,
		cache:  cache,
		logger: logger.Named("CachedSessionRepo"),
	}
}

func (r *cachedSessionRepository) Create(ctx context.Context, session *models.PlayerSession) error {
	if err := r.store.Create(ctx, session); err != nil {
		return err
	}
	r.put(ctx, session)
	return nil
}

func (r *cachedSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	cached, err := r.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("Session cache read failed, falling back to store", zap.Stringer("gameID", id), zap.Error(err))
	}

	session, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, session)
	return session, nil
}

func (r *cachedSessionRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.PlayerSession, error) {
	return r.store.ListByPlayer(ctx, playerID)
}

func (r *cachedSessionRepository) Update(ctx context.Context, session *models.PlayerSession) error {
	if err := r.store.Update(ctx, session); err != nil {
		if errors.Is(err, models.ErrConcurrentUpdate) || errors.Is(err, models.ErrNotFound) {
			// В кэше могла остаться устаревшая версия
			r.drop(ctx, session.ID)
		}
		return err
	}
	r.put(ctx, session)
	return nil
}

func (r *cachedSessionRepository) Delete(ctx context.Context, id uuid.UUID, playerID uuid.UUID) error {
	if err := r.store.Delete(ctx, id, playerID); err != nil {
		return err
	}
	r.drop(ctx, id)
	return nil
}

func (r *cachedSessionRepository) put(ctx context.Context, session *models.PlayerSession) {
	if err := r.cache.Set(ctx, session); err != nil {
		r.logger.Warn("Failed to cache session", zap.Stringer("gameID", session.ID), zap.Error(err))
	}
}

func (r *cachedSessionRepository) drop(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Warn("Failed to evict session from cache", zap.Stringer("gameID", id), zap.Error(err))
	}
}
