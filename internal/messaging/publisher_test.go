package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ronin-novel/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type channelMock struct {
	mock.Mock
}

func (m *channelMock) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func testEvent() models.GameEvent {
	return models.GameEvent{
		Type:       models.GameEventItemsCollected,
		GameID:     uuid.New(),
		PlayerID:   uuid.New(),
		SceneID:    "village_entrance",
		Items:      []string{"Mysterious Tanto"},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRabbitMQPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := new(channelMock)
	p := newRabbitMQPublisher(ch, "game_events", zap.NewNop())
	event := testEvent()

	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "", "game_events", false, false, mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) { published = args.Get(5).(amqp.Publishing) }).
		Return(nil).Once()

	require.NoError(t, p.PublishGameEvent(context.Background(), event))
	ch.AssertExpectations(t)

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, "items_collected", published.Type)

	var decoded models.GameEvent
	require.NoError(t, json.Unmarshal(published.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestRabbitMQPublisher_RetriesThenSucceeds(t *testing.T) {
	ch := new(channelMock)
	p := newRabbitMQPublisher(ch, "game_events", zap.NewNop())

	ch.On("PublishWithContext", mock.Anything, "", "game_events", false, false, mock.Anything).Return(errors.New("channel busy")).Once()
	ch.On("PublishWithContext", mock.Anything, "", "game_events", false, false, mock.Anything).Return(nil).Once()

	require.NoError(t, p.PublishGameEvent(context.Background(), testEvent()))
	ch.AssertNumberOfCalls(t, "PublishWithContext", 2)
}

func TestRabbitMQPublisher_GivesUpAfterAttempts(t *testing.T) {
	ch := new(channelMock)
	p := newRabbitMQPublisher(ch, "game_events", zap.NewNop())

	ch.On("PublishWithContext", mock.Anything, "", "game_events", false, false, mock.Anything).Return(errors.New("closed"))

	err := p.PublishGameEvent(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	ch.AssertNumberOfCalls(t, "PublishWithContext", publishAttempts)
}

func TestRabbitMQPublisher_NilChannel(t *testing.T) {
	p := &rabbitMQPublisher{queueName: "game_events", logger: zap.NewNop()}
	assert.Error(t, p.PublishGameEvent(context.Background(), testEvent()))
}

type recordingPublisher struct {
	events []models.GameEvent
	err    error
}

func (r *recordingPublisher) PublishGameEvent(_ context.Context, e models.GameEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMultiPublisher_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("ws down")}
	multi := MultiPublisher{ok, nil, failing, NoopPublisher{}}

	err := multi.PublishGameEvent(context.Background(), testEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, failing.err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)

	assert.NoError(t, MultiPublisher{ok}.PublishGameEvent(context.Background(), testEvent()))
	assert.NoError(t, MultiPublisher{}.PublishGameEvent(context.Background(), testEvent()))
}
