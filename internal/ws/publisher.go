package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"ronin-novel/internal/messaging"
	"ronin-novel/internal/models"
)

var _ messaging.GameEventPublisher = (*EventPublisher)(nil)

// EventPublisher доставляет игровые события владельцу сохранения, если он онлайн.
type EventPublisher struct {
	manager *ConnectionManager
}

func NewEventPublisher(manager *ConnectionManager) *EventPublisher {
	return &EventPublisher{manager: manager}
}

// PublishGameEvent не считает оффлайн игрока ошибкой.
func (p *EventPublisher) PublishGameEvent(_ context.Context, event models.GameEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal game event for websocket: %w", err)
	}
	p.manager.SendToUser(event.PlayerID, body)
	return nil
}
