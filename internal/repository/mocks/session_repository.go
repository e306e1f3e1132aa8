package mocks

import (
	"context"

	"ronin-novel/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, session *models.PlayerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.PlayerSession)
	return s, args.Error(1)
}
func (m *SessionRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.PlayerSession, error) {
	args := m.Called(ctx, playerID)
	list, _ := args.Get(0).([]*models.PlayerSession)
	return list, args.Error(1)
}
func (m *SessionRepository) Update(ctx context.Context, session *models.PlayerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *SessionRepository) Delete(ctx context.Context, id uuid.UUID, playerID uuid.UUID) error {
	args := m.Called(ctx, id, playerID)
	return args.Error(0)
}

// Mock SessionCache
type SessionCache struct {
	mock.Mock
}

func (m *SessionCache) Get(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.PlayerSession)
	return s, args.Error(1)
}
func (m *SessionCache) Set(ctx context.Context, session *models.PlayerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *SessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
