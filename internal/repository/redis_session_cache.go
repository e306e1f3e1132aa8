package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ronin-novel/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss — записи нет в кэше.
var ErrCacheMiss = errors.New("session cache miss")

// Compile-time check to ensure redisSessionCache implements SessionCache
var _ SessionCache = (*redisSessionCache)(nil)

type redisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionCache создает кэш сохранений в Redis. Записи хранятся как JSON с TTL.
func NewRedisSessionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) SessionCache {
	return &redisSessionCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionCache"),
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("player_session:%s", id)
}

func (c *redisSessionCache) Get(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	var session models.PlayerSession
	if err := json.Unmarshal(data, &session); err != nil {
		// Битая запись: удаляем и считаем промахом
		c.logger.Warn("Corrupted session in cache, dropping", zap.Stringer("gameID", id), zap.Error(err))
		_ = c.client.Del(ctx, sessionKey(id)).Err()
		return nil, ErrCacheMiss
	}
	return &session, nil
}

func (c *redisSessionCache) Set(ctx context.Context, session *models.PlayerSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session for cache: %w", err)
	}
	if err := c.client.Set(ctx, sessionKey(session.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in redis: %w", err)
	}
	return nil
}

func (c *redisSessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
