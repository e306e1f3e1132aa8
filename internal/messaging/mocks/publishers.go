package mocks

import (
	"context"

	"ronin-novel/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock GameEventPublisher
type GameEventPublisher struct {
	mock.Mock
}

func (m *GameEventPublisher) PublishGameEvent(ctx context.Context, event models.GameEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
