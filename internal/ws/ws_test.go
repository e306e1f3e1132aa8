package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ronin-novel/internal/models"
	"ronin-novel/internal/ws"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	manager *ws.ConnectionManager
	server  *httptest.Server
	tokens  map[string]uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	f := &fixture{
		manager: ws.NewConnectionManager(zap.NewNop()),
		tokens:  map[string]uuid.UUID{},
	}
	go f.manager.Run(ctx)

	verify := func(_ context.Context, token string) (*models.Claims, error) {
		id, ok := f.tokens[token]
		if !ok {
			return nil, models.ErrTokenInvalid
		}
		return &models.Claims{UserID: id}, nil
	}
	f.server = httptest.NewServer(ws.NewHandler(f.manager, verify, []string{"*"}, zap.NewNop()))
	t.Cleanup(func() {
		cancel()
		f.server.Close()
	})
	return f
}

func (f *fixture) dial(t *testing.T, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func (f *fixture) waitOnline(t *testing.T, userID uuid.UUID) {
	t.Helper()
	require.Eventually(t, func() bool { return f.manager.Online(userID) }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsMissingAndInvalidToken(t *testing.T) {
	f := newFixture(t)

	_, resp, err := f.dial(t, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = f.dial(t, "forged")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventPublisher_DeliversToOwner(t *testing.T) {
	f := newFixture(t)
	playerID := uuid.New()
	f.tokens["good"] = playerID

	conn, _, err := f.dial(t, "good")
	require.NoError(t, err)
	defer conn.Close()
	f.waitOnline(t, playerID)

	event := models.GameEvent{
		Type:     models.GameEventSceneEntered,
		GameID:   uuid.New(),
		PlayerID: playerID,
		SceneID:  "forest_path",
	}
	pub := ws.NewEventPublisher(f.manager)
	require.NoError(t, pub.PublishGameEvent(context.Background(), event))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.GameEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, event.GameID, got.GameID)
	assert.Equal(t, "forest_path", got.SceneID)
}

func TestEventPublisher_OfflinePlayerIsNotAnError(t *testing.T) {
	f := newFixture(t)
	pub := ws.NewEventPublisher(f.manager)

	err := pub.PublishGameEvent(context.Background(), models.GameEvent{PlayerID: uuid.New()})
	assert.NoError(t, err)
	assert.False(t, f.manager.SendToUser(uuid.New(), []byte("{}")))
}

func TestConnectionManager_NewConnectionReplacesOld(t *testing.T) {
	f := newFixture(t)
	playerID := uuid.New()
	f.tokens["good"] = playerID

	first, _, err := f.dial(t, "good")
	require.NoError(t, err)
	defer first.Close()
	f.waitOnline(t, playerID)

	second, _, err := f.dial(t, "good")
	require.NoError(t, err)
	defer second.Close()

	// Старое соединение закрывается сервером
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = first.ReadMessage()
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return f.manager.SendToUser(playerID, []byte(`{"type":"game_reset"}`))
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := second.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game_reset"}`, string(data))
}

func TestConnectionManager_DisconnectUnregisters(t *testing.T) {
	f := newFixture(t)
	playerID := uuid.New()
	f.tokens["good"] = playerID

	conn, _, err := f.dial(t, "good")
	require.NoError(t, err)
	f.waitOnline(t, playerID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !f.manager.Online(playerID) }, 2*time.Second, 10*time.Millisecond)
}
