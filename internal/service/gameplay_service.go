package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ronin-novel/internal/game"
	"ronin-novel/internal/messaging"
	"ronin-novel/internal/models"
	"ronin-novel/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameplayService определяет интерфейс бизнес-логики прохождений.
type GameplayService interface {
	StartGame(ctx context.Context, playerID uuid.UUID) (*GameState, error)
	ListGames(ctx context.Context, playerID uuid.UUID) ([]GameSummary, error)
	GetGame(ctx context.Context, playerID, gameID uuid.UUID) (*GameState, error)
	MakeChoice(ctx context.Context, playerID, gameID uuid.UUID, choiceID string) (*GameState, error)
	ResetGame(ctx context.Context, playerID, gameID uuid.UUID) (*GameState, error)
	ExplorePoint(ctx context.Context, playerID, gameID uuid.UUID, pointID string) (*ExplorationResult, error)
	DeleteGame(ctx context.Context, playerID, gameID uuid.UUID) error
	GetScene(ctx context.Context, sceneID string) (*game.SceneView, error)
}

type gameplayServiceImpl struct {
	engine    *game.Engine
	repo      repository.SessionRepository
	publisher messaging.GameEventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewGameplayService создает сервис. publisher может быть nil, тогда события не отправляются.
func NewGameplayService(
	engine *game.Engine,
	repo repository.SessionRepository,
	publisher messaging.GameEventPublisher,
	logger *zap.Logger,
) GameplayService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &gameplayServiceImpl{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("GameplayService"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *gameplayServiceImpl) StartGame(ctx context.Context, playerID uuid.UUID) (*GameState, error) {
	log := s.logger.With(zap.Stringer("playerID", playerID))

	session := s.engine.Start()
	record := &models.PlayerSession{PlayerID: playerID}
	s.applySession(record, session)

	if err := s.repo.Create(ctx, record); err != nil {
		log.Error("Failed to create save slot", zap.Error(err))
		return nil, fmt.Errorf("failed to create save slot: %w", err)
	}
	gamesStartedTotal.Inc()
	log.Info("Game started", zap.Stringer("gameID", record.ID))

	events := []models.GameEvent{s.newEvent(models.GameEventStarted, record, nil)}
	events = append(events, s.progressEvents(record, game.Session{}, session, false)...)
	s.publish(ctx, events...)

	return s.toState(record, session), nil
}

func (s *gameplayServiceImpl) ListGames(ctx context.Context, playerID uuid.UUID) ([]GameSummary, error) {
	records, err := s.repo.ListByPlayer(ctx, playerID)
	if err != nil {
		s.logger.Error("Failed to list save slots", zap.Stringer("playerID", playerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list save slots: %w", err)
	}

	summaries := make([]GameSummary, 0, len(records))
	for _, r := range records {
		summary := GameSummary{
			GameID:         r.ID,
			CurrentSceneID: r.CurrentSceneID,
			ItemsCount:     len(r.Inventory),
			Ended:          r.Ended,
			StartedAt:      r.StartedAt,
			LastActivityAt: r.LastActivityAt,
			CompletedAt:    r.CompletedAt,
		}
		if scene, ok := s.engine.Graph().Lookup(r.CurrentSceneID); ok {
			summary.SceneTitle = scene.Title
		} else if scene, ok := s.engine.Graph().Lookup(r.DisplayedSceneID); ok {
			summary.SceneTitle = scene.Title
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *gameplayServiceImpl) GetGame(ctx context.Context, playerID, gameID uuid.UUID) (*GameState, error) {
	record, session, err := s.load(ctx, playerID, gameID)
	if err != nil {
		return nil, err
	}
	return s.toState(record, session), nil
}

func (s *gameplayServiceImpl) MakeChoice(ctx context.Context, playerID, gameID uuid.UUID, choiceID string) (*GameState, error) {
	log := s.logger.With(zap.Stringer("gameID", gameID), zap.String("choiceID", choiceID))

	record, before, err := s.load(ctx, playerID, gameID)
	if err != nil {
		return nil, err
	}

	after, err := s.engine.Transition(before, choiceID)
	if err != nil {
		choicesTotal.WithLabelValues("rejected").Inc()
		log.Info("Choice rejected", zap.Error(err))
		return nil, err
	}
	if len(after.History()) == len(before.History()) {
		// Неизвестный выбор в нестрогом режиме: состояние не меняется, сохранять нечего
		choicesTotal.WithLabelValues("ignored").Inc()
		log.Debug("Choice ignored")
		return s.toState(record, before), nil
	}

	s.applySession(record, after)
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	choicesTotal.WithLabelValues("applied").Inc()
	log.Debug("Choice applied", zap.String("sceneID", after.CurrentSceneID()))

	s.publish(ctx, s.progressEvents(record, before, after, true)...)
	return s.toState(record, after), nil
}

func (s *gameplayServiceImpl) ResetGame(ctx context.Context, playerID, gameID uuid.UUID) (*GameState, error) {
	record, before, err := s.load(ctx, playerID, gameID)
	if err != nil {
		return nil, err
	}

	after := s.engine.Reset(before)
	s.applySession(record, after)
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	gameResetsTotal.Inc()
	s.logger.Info("Game reset", zap.Stringer("gameID", gameID))

	events := []models.GameEvent{s.newEvent(models.GameEventReset, record, nil)}
	events = append(events, s.progressEvents(record, game.Session{}, after, false)...)
	s.publish(ctx, events...)

	return s.toState(record, after), nil
}

func (s *gameplayServiceImpl) ExplorePoint(ctx context.Context, playerID, gameID uuid.UUID, pointID string) (*ExplorationResult, error) {
	_, session, err := s.load(ctx, playerID, gameID)
	if err != nil {
		return nil, err
	}
	point, err := s.engine.Explore(session, pointID)
	if err != nil {
		return nil, err
	}
	return &ExplorationResult{
		PointID:     point.ID,
		Tooltip:     point.Tooltip,
		Description: point.Description,
		ItemFound:   point.ItemFound,
		InInventory: point.HasItem() && session.HasItem(point.ItemFound),
	}, nil
}

func (s *gameplayServiceImpl) DeleteGame(ctx context.Context, playerID, gameID uuid.UUID) error {
	if _, _, err := s.load(ctx, playerID, gameID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, gameID, playerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrGameNotFound
		}
		return fmt.Errorf("failed to delete save slot: %w", err)
	}
	s.logger.Info("Game deleted", zap.Stringer("gameID", gameID), zap.Stringer("playerID", playerID))
	return nil
}

func (s *gameplayServiceImpl) GetScene(_ context.Context, sceneID string) (*game.SceneView, error) {
	sv, ok := s.engine.SceneView(sceneID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrSceneNotFound, sceneID)
	}
	return sv, nil
}

// load читает сохранение, проверяет владельца и восстанавливает сессию.
func (s *gameplayServiceImpl) load(ctx context.Context, playerID, gameID uuid.UUID) (*models.PlayerSession, game.Session, error) {
	record, err := s.repo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, game.Session{}, models.ErrGameNotFound
		}
		s.logger.Error("Failed to load save slot", zap.Stringer("gameID", gameID), zap.Error(err))
		return nil, game.Session{}, fmt.Errorf("failed to load save slot: %w", err)
	}
	if !record.BelongsTo(playerID) {
		s.logger.Warn("Save slot access denied",
			zap.Stringer("gameID", gameID),
			zap.Stringer("playerID", playerID),
			zap.Stringer("ownerID", record.PlayerID),
		)
		return nil, game.Session{}, models.ErrForbidden
	}

	session := s.engine.Restore(game.Snapshot{
		CurrentSceneID:   record.CurrentSceneID,
		DisplayedSceneID: record.DisplayedSceneID,
		History:          record.History,
		Inventory:        record.Inventory,
		Ended:            record.Ended,
	})
	return record, session, nil
}

func (s *gameplayServiceImpl) save(ctx context.Context, record *models.PlayerSession) error {
	if err := s.repo.Update(ctx, record); err != nil {
		switch {
		case errors.Is(err, models.ErrConcurrentUpdate):
			return err
		case errors.Is(err, models.ErrNotFound):
			return models.ErrGameNotFound
		}
		s.logger.Error("Failed to save save slot", zap.Stringer("gameID", record.ID), zap.Error(err))
		return fmt.Errorf("failed to save save slot: %w", err)
	}
	return nil
}

// applySession переносит состояние сессии в запись. CompletedAt ставится один раз.
func (s *gameplayServiceImpl) applySession(record *models.PlayerSession, session game.Session) {
	snap := session.Snapshot()
	record.CurrentSceneID = snap.CurrentSceneID
	record.DisplayedSceneID = snap.DisplayedSceneID
	record.History = snap.History
	record.Inventory = snap.Inventory
	record.Ended = snap.Ended
	if snap.Ended && record.CompletedAt == nil {
		completed := s.now()
		record.CompletedAt = &completed
	}
}

func (s *gameplayServiceImpl) toState(record *models.PlayerSession, session game.Session) *GameState {
	return &GameState{
		GameID:         record.ID,
		Version:        record.Version,
		StartedAt:      record.StartedAt,
		LastActivityAt: record.LastActivityAt,
		CompletedAt:    record.CompletedAt,
		View:           s.engine.View(session),
	}
}

// progressEvents описывает разницу между сессиями: вход в сцену, новые предметы, концовка.
func (s *gameplayServiceImpl) progressEvents(record *models.PlayerSession, before, after game.Session, moved bool) []models.GameEvent {
	var events []models.GameEvent
	if moved {
		events = append(events, s.newEvent(models.GameEventSceneEntered, record, nil))
	}

	var gained []string
	for _, item := range after.Inventory() {
		if !before.HasItem(item) {
			gained = append(gained, item)
		}
	}
	if len(gained) > 0 {
		itemsCollectedTotal.Add(float64(len(gained)))
		events = append(events, s.newEvent(models.GameEventItemsCollected, record, gained))
	}

	if after.Ended() && !before.Ended() {
		if scene, ok := s.engine.CurrentScene(after); ok && scene.IsEnding {
			endingsReachedTotal.WithLabelValues(scene.ID).Inc()
		}
		events = append(events, s.newEvent(models.GameEventEnded, record, nil))
	}
	return events
}

func (s *gameplayServiceImpl) newEvent(t models.GameEventType, record *models.PlayerSession, items []string) models.GameEvent {
	return models.GameEvent{
		Type:       t,
		GameID:     record.ID,
		PlayerID:   record.PlayerID,
		SceneID:    record.CurrentSceneID,
		Items:      items,
		OccurredAt: s.now(),
	}
}

// publish отправляет события. Ошибки доставки не влияют на результат запроса.
func (s *gameplayServiceImpl) publish(ctx context.Context, events ...models.GameEvent) {
	for _, event := range events {
		if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
			eventPublishFailuresTotal.Inc()
			s.logger.Warn("Failed to publish game event",
				zap.String("type", string(event.Type)),
				zap.Stringer("gameID", event.GameID),
				zap.Error(err),
			)
		}
	}
}
