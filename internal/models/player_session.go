package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerSession — сохраненное прохождение (слот сохранения) конкретного игрока.
type PlayerSession struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PlayerID         uuid.UUID  `json:"player_id" db:"player_id"`
	CurrentSceneID   string     `json:"current_scene_id" db:"current_scene_id"`
	DisplayedSceneID string     `json:"displayed_scene_id" db:"displayed_scene_id"` // Отличается от текущей после перехода в несуществующую сцену
	History          []string   `json:"history" db:"history"`                       // Посещенные сцены, только добавление
	Inventory        []string   `json:"inventory" db:"inventory"`                   // Предметы в порядке получения
	Ended            bool       `json:"ended" db:"ended"`
	Version          int        `json:"version" db:"version"` // Оптимистичная блокировка
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	LastActivityAt   time.Time  `json:"last_activity_at" db:"last_activity_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"` // Момент первого достижения концовки
}

// BelongsTo проверяет владельца сохранения.
func (s *PlayerSession) BelongsTo(playerID uuid.UUID) bool {
	return s != nil && s.PlayerID == playerID
}
