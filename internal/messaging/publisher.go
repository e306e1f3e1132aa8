package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ronin-novel/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout  = 10 * time.Second
	publishAttempts = 3
	appID           = "ronin-gameplay"
)

// GameEventPublisher публикует события прохождения.
type GameEventPublisher interface {
	PublishGameEvent(ctx context.Context, event models.GameEvent) error
}

// amqpChannel — часть *amqp.Channel, нужная паблишеру.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// rabbitMQPublisher implements GameEventPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   amqpChannel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQGameEventPublisher открывает канал и объявляет durable очередь событий.
func NewRabbitMQGameEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (GameEventPublisher, *amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("game event publisher: failed to open channel: %w", err)
	}
	if _, err = ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("game event publisher: failed to declare queue '%s': %w", queueName, err)
	}
	logger.Info("Game events queue declared", zap.String("queue", queueName))
	return newRabbitMQPublisher(ch, queueName, logger), ch, nil
}

func newRabbitMQPublisher(ch amqpChannel, queueName string, logger *zap.Logger) *rabbitMQPublisher {
	return &rabbitMQPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("RabbitMQPublisher"),
	}
}

// PublishGameEvent публикует событие как persistent JSON в очередь по умолчанию.
func (p *rabbitMQPublisher) PublishGameEvent(ctx context.Context, event models.GameEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal game event %s for game %s: %w", event.Type, event.GameID, err)
	}
	if err := p.publishMessage(ctx, body, string(event.Type)); err != nil {
		p.logger.Error("Failed to publish game event",
			zap.String("type", string(event.Type)),
			zap.Stringer("gameID", event.GameID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish game event for game %s: %w", event.GameID, err)
	}
	return nil
}

func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte, msgType string) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Type:         msgType,
				Timestamp:    time.Now(),
				AppId:        appID,
			},
		)
		if err == nil {
			p.logger.Debug("Message published", zap.String("queue", p.queueName), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed", zap.String("queue", p.queueName), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == publishAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("publish to queue %s cancelled: %w", p.queueName, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("failed to publish to queue %s after %d attempts: %w", p.queueName, publishAttempts, err)
}
