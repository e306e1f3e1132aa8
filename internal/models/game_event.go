package models

import (
	"time"

	"github.com/google/uuid"
)

// GameEventType определяет тип игрового события.
type GameEventType string

const (
	GameEventStarted        GameEventType = "game_started"
	GameEventSceneEntered   GameEventType = "scene_entered"
	GameEventItemsCollected GameEventType = "items_collected"
	GameEventEnded          GameEventType = "game_ended"
	GameEventReset          GameEventType = "game_reset"
)

// GameEvent — уведомление об изменении сохранения. Отправляется в RabbitMQ и клиенту по WebSocket.
type GameEvent struct {
	Type       GameEventType `json:"type"`
	GameID     uuid.UUID     `json:"game_id"`
	PlayerID   uuid.UUID     `json:"player_id"`
	SceneID    string        `json:"scene_id"`
	Items      []string      `json:"items,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
