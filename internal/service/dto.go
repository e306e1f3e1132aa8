package service

import (
	"time"

	"ronin-novel/internal/game"

	"github.com/google/uuid"
)

// GameState — сохранение вместе с представлением текущей сцены.
type GameState struct {
	GameID         uuid.UUID  `json:"game_id"`
	Version        int        `json:"version"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	game.View
}

// GameSummary — элемент списка сохранений игрока.
type GameSummary struct {
	GameID         uuid.UUID  `json:"game_id"`
	CurrentSceneID string     `json:"current_scene_id"`
	SceneTitle     string     `json:"scene_title,omitempty"`
	ItemsCount     int        `json:"items_count"`
	Ended          bool       `json:"ended"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ExplorationResult — данные уведомления "найдено" для точки исследования.
type ExplorationResult struct {
	PointID     string `json:"point_id"`
	Tooltip     string `json:"tooltip"`
	Description string `json:"description"`
	ItemFound   string `json:"item_found,omitempty"`
	// InInventory — предмет точки уже у игрока (выдается при входе в сцену).
	InInventory bool `json:"in_inventory"`
}
