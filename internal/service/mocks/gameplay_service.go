package mocks

import (
	"context"

	"ronin-novel/internal/game"
	"ronin-novel/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock GameplayService
type GameplayService struct {
	mock.Mock
}

func (m *GameplayService) StartGame(ctx context.Context, playerID uuid.UUID) (*service.GameState, error) {
	args := m.Called(ctx, playerID)
	st, _ := args.Get(0).(*service.GameState)
	return st, args.Error(1)
}
func (m *GameplayService) ListGames(ctx context.Context, playerID uuid.UUID) ([]service.GameSummary, error) {
	args := m.Called(ctx, playerID)
	list, _ := args.Get(0).([]service.GameSummary)
	return list, args.Error(1)
}
func (m *GameplayService) GetGame(ctx context.Context, playerID, gameID uuid.UUID) (*service.GameState, error) {
	args := m.Called(ctx, playerID, gameID)
	st, _ := args.Get(0).(*service.GameState)
	return st, args.Error(1)
}
func (m *GameplayService) MakeChoice(ctx context.Context, playerID, gameID uuid.UUID, choiceID string) (*service.GameState, error) {
	args := m.Called(ctx, playerID, gameID, choiceID)
	st, _ := args.Get(0).(*service.GameState)
	return st, args.Error(1)
}
func (m *GameplayService) ResetGame(ctx context.Context, playerID, gameID uuid.UUID) (*service.GameState, error) {
	args := m.Called(ctx, playerID, gameID)
	st, _ := args.Get(0).(*service.GameState)
	return st, args.Error(1)
}
func (m *GameplayService) ExplorePoint(ctx context.Context, playerID, gameID uuid.UUID, pointID string) (*service.ExplorationResult, error) {
	args := m.Called(ctx, playerID, gameID, pointID)
	res, _ := args.Get(0).(*service.ExplorationResult)
	return res, args.Error(1)
}
func (m *GameplayService) DeleteGame(ctx context.Context, playerID, gameID uuid.UUID) error {
	args := m.Called(ctx, playerID, gameID)
	return args.Error(0)
}
func (m *GameplayService) GetScene(ctx context.Context, sceneID string) (*game.SceneView, error) {
	args := m.Called(ctx, sceneID)
	sv, _ := args.Get(0).(*game.SceneView)
	return sv, args.Error(1)
}
