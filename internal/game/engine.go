package game

import (
	"errors"
	"fmt"

	"ronin-novel/internal/story"

	"go.uber.org/zap"
)

var (
	// ErrUnknownChoice — выбор не принадлежит текущей сцене. Возвращается только в строгом режиме.
	ErrUnknownChoice = errors.New("choice does not belong to the current scene")
	// ErrDanglingScene — выбор ведет в несуществующую сцену. Возвращается только в строгом режиме.
	ErrDanglingScene = errors.New("choice targets a scene that does not exist")
	// ErrExplorationPointNotFound — на текущей сцене нет такой точки исследования.
	ErrExplorationPointNotFound = errors.New("exploration point not found on the current scene")
)

// Engine применяет переходы к сессиям. Хранит только ссылку на общий граф,
// поэтому безопасен для конкурентного использования.
type Engine struct {
	graph  *story.Graph
	strict bool
	logger *zap.Logger
}

// Option настраивает Engine.
type Option func(*Engine)

// WithStrict включает строгий режим: неизвестные выборы и висячие ссылки
// возвращают ошибки вместо молчаливого no-op.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithLogger задает логгер. По умолчанию используется zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine создает движок поверх графа.
func NewEngine(graph *story.Graph, opts ...Option) *Engine {
	e := &Engine{graph: graph, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("GameEngine")
	return e
}

// Graph возвращает граф сюжета.
func (e *Engine) Graph() *story.Graph {
	return e.graph
}

// Strict сообщает, включен ли строгий режим.
func (e *Engine) Strict() bool {
	return e.strict
}

// Start создает сессию в каноническом начальном состоянии.
func (e *Engine) Start() Session {
	start := e.graph.Start()
	s := Session{
		current:   start,
		displayed: start,
		history:   []string{start},
		inventory: []string{},
	}
	e.enter(&s)
	return s
}

// Transition выполняет выбор choiceID на показанной сцене (DisplayedSceneID).
// В нестрогом режиме неизвестный выбор — no-op без ошибки. Висячая цель все равно
// попадает в current и history (CurrentScene вернет false), но показанная сцена
// и ее выборы остаются прежними, поэтому игрок может выбрать другой вариант.
func (e *Engine) Transition(s Session, choiceID string) (Session, error) {
	log := e.logger.With(zap.String("displayedSceneID", s.displayed), zap.String("choiceID", choiceID))

	scene, ok := e.graph.Lookup(s.displayed)
	if !ok {
		return e.reject(s, log, fmt.Errorf("%w: scene %q is not defined", ErrUnknownChoice, s.displayed))
	}
	choice, ok := scene.Choice(choiceID)
	if !ok {
		return e.reject(s, log, fmt.Errorf("%w: %q on scene %q", ErrUnknownChoice, choiceID, s.displayed))
	}
	if _, ok := e.graph.Lookup(choice.NextSceneID); !ok {
		if e.strict {
			return s, fmt.Errorf("%w: %q (choice %q on scene %q)", ErrDanglingScene, choice.NextSceneID, choiceID, s.displayed)
		}
		log.Warn("Choice targets an undefined scene, keeping the displayed scene", zap.String("nextSceneID", choice.NextSceneID))
	}

	next := s.clone()
	next.current = choice.NextSceneID
	next.history = append(next.history, choice.NextSceneID)
	e.enter(&next)

	log.Debug("Transition applied",
		zap.String("nextSceneID", next.current),
		zap.String("displayedSceneID", next.displayed),
		zap.Bool("ended", next.ended),
	)
	return next, nil
}

// CollectItem добавляет предмет в инвентарь. Повторное добавление — no-op.
func (e *Engine) CollectItem(s Session, item string) Session {
	next := s.clone()
	next.withItem(item)
	return next
}

// Reset возвращает каноническое начальное состояние независимо от переданной сессии.
func (e *Engine) Reset(Session) Session {
	return e.Start()
}

// CurrentScene разрешает текущую сцену. false — висячий ID, клиент должен показать пустое состояние.
func (e *Engine) CurrentScene(s Session) (story.Scene, bool) {
	return e.graph.Lookup(s.current)
}

// DisplayedScene разрешает показанную сцену: ту, чьи выборы и точки доступны игроку.
func (e *Engine) DisplayedScene(s Session) (story.Scene, bool) {
	return e.graph.Lookup(s.displayed)
}

// Explore возвращает точку исследования показанной сцены (данные для уведомления "найдено").
// Состояние сессии не меняется: предметы выдаются при входе в сцену.
func (e *Engine) Explore(s Session, pointID string) (story.ExplorationPoint, error) {
	scene, ok := e.graph.Lookup(s.displayed)
	if !ok {
		return story.ExplorationPoint{}, fmt.Errorf("%w: scene %q is not defined", ErrExplorationPointNotFound, s.displayed)
	}
	point, ok := scene.ExplorationPoint(pointID)
	if !ok {
		return story.ExplorationPoint{}, fmt.Errorf("%w: %q on scene %q", ErrExplorationPointNotFound, pointID, s.displayed)
	}
	return point, nil
}

// Restore восстанавливает сессию из снимка как есть, без повторной выдачи предметов.
// Пустой снимок дает начальное состояние. Для висячей текущей сцены показанной становится
// DisplayedSceneID снимка, а если и он не разрешается, последняя разрешимая сцена из истории.
func (e *Engine) Restore(snap Snapshot) Session {
	if snap.CurrentSceneID == "" {
		return e.Start()
	}
	s := Session{
		current:   snap.CurrentSceneID,
		history:   append([]string(nil), snap.History...),
		inventory: []string{},
		ended:     snap.Ended,
	}
	if len(s.history) == 0 {
		s.history = []string{snap.CurrentSceneID}
	}
	s.displayed = e.resolveDisplayed(snap.DisplayedSceneID, s.current, s.history)
	for _, item := range snap.Inventory {
		s.withItem(item)
	}
	return s
}

// enter применяет эффекты входа в текущую сцену: автоматическую выдачу предметов
// со всех точек исследования и флаг концовки.
func (e *Engine) enter(s *Session) {
	scene, ok := e.graph.Lookup(s.current)
	if !ok {
		return
	}
	s.displayed = scene.ID
	for _, item := range scene.Items() {
		s.withItem(item)
	}
	if scene.IsEnding {
		s.ended = true
	}
}

// resolveDisplayed: разрешимая текущая сцена всегда показана сама.
func (e *Engine) resolveDisplayed(displayed, current string, history []string) string {
	if _, ok := e.graph.Lookup(current); ok {
		return current
	}
	if _, ok := e.graph.Lookup(displayed); ok {
		return displayed
	}
	for i := len(history) - 1; i >= 0; i-- {
		if _, ok := e.graph.Lookup(history[i]); ok {
			return history[i]
		}
	}
	return e.graph.Start()
}

func (e *Engine) reject(s Session, log *zap.Logger, err error) (Session, error) {
	if e.strict {
		return s, err
	}
	log.Debug("Choice ignored", zap.Error(err))
	return s, nil
}
