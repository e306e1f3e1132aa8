package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ronin-novel/internal/messaging"
	"ronin-novel/internal/models"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestRabbitMQGameEventPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client unavailable: %v", err)
	}
	defer cli.Close()
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon not reachable: %v", err)
	}

	ctx := context.Background()
	rmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rmqContainer.Terminate(ctx) })

	amqpURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	publisher, pubCh, err := messaging.NewRabbitMQGameEventPublisher(conn, "game_events_test", zap.NewNop())
	require.NoError(t, err)
	defer pubCh.Close()

	event := models.GameEvent{
		Type:       models.GameEventEnded,
		GameID:     uuid.New(),
		PlayerID:   uuid.New(),
		SceneID:    "true_ending",
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.PublishGameEvent(ctx, event))

	consumeCh, err := conn.Channel()
	require.NoError(t, err)
	defer consumeCh.Close()
	deliveries, err := consumeCh.Consume("game_events_test", "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, "application/json", d.ContentType)
		assert.Equal(t, uint8(amqp.Persistent), d.DeliveryMode)
		assert.Equal(t, string(models.GameEventEnded), d.Type)
		var got models.GameEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, event.GameID, got.GameID)
		assert.Equal(t, "true_ending", got.SceneID)
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for game event in RabbitMQ queue")
	}
}
