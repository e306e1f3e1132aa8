package messaging

import (
	"context"
	"errors"

	"ronin-novel/internal/models"
)

// MultiPublisher рассылает событие всем паблишерам и собирает ошибки.
type MultiPublisher []GameEventPublisher

func (m MultiPublisher) PublishGameEvent(ctx context.Context, event models.GameEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishGameEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopPublisher отбрасывает события. Используется, когда брокер не настроен.
type NoopPublisher struct{}

func (NoopPublisher) PublishGameEvent(context.Context, models.GameEvent) error { return nil }
