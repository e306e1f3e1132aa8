// Package ws доставляет игровые события подключенным клиентам по WebSocket.
package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ronin_ws_active_connections",
	Help: "Number of active WebSocket connections.",
})

// Client представляет собой одно WebSocket соединение игрока.
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	send   chan []byte
}

// NewClient создает клиента с буферизованной очередью отправки.
func NewClient(userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ConnectionManager управляет активными WebSocket соединениями. На игрока одно соединение,
// новое вытесняет старое.
type ConnectionManager struct {
	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
	logger     *zap.Logger
}

// NewConnectionManager создает менеджер. Цикл обработки запускается через Run.
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("ConnectionManager"),
	}
}

// Run обрабатывает регистрацию и дерегистрацию до отмены ctx, затем закрывает все соединения.
func (m *ConnectionManager) Run(ctx context.Context) {
	m.logger.Info("ConnectionManager started")
	defer close(m.done)
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if old, ok := m.clients[client.UserID]; ok {
				m.logger.Info("Replacing existing connection", zap.Stringer("userID", client.UserID))
				close(old.send)
				_ = old.Conn.Close()
				activeConnections.Dec()
			}
			m.clients[client.UserID] = client
			activeConnections.Inc()
			m.mu.Unlock()
			m.logger.Debug("Client registered", zap.Stringer("userID", client.UserID))

		case client := <-m.unregister:
			m.mu.Lock()
			// Клиент мог быть уже вытеснен новым соединением того же игрока
			if current, ok := m.clients[client.UserID]; ok && current == client {
				delete(m.clients, client.UserID)
				close(client.send)
				activeConnections.Dec()
				m.logger.Debug("Client unregistered", zap.Stringer("userID", client.UserID))
			}
			m.mu.Unlock()

		case <-ctx.Done():
			m.mu.Lock()
			for id, client := range m.clients {
				close(client.send)
				_ = client.Conn.Close()
				delete(m.clients, id)
				activeConnections.Dec()
			}
			m.mu.Unlock()
			m.logger.Info("ConnectionManager stopped")
			return
		}
	}
}

// RegisterClient регистрирует нового клиента. false, если менеджер уже остановлен.
func (m *ConnectionManager) RegisterClient(client *Client) bool {
	select {
	case m.register <- client:
		return true
	case <-m.done:
		return false
	}
}

// UnregisterClient удаляет клиента.
func (m *ConnectionManager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// SendToUser ставит сообщение в очередь игрока.
// Возвращает true, если игрок онлайн и сообщение принято, иначе false.
func (m *ConnectionManager) SendToUser(userID uuid.UUID, message []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.clients[userID]
	if !ok {
		m.logger.Debug("User is offline", zap.Stringer("userID", userID))
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		m.logger.Warn("Send queue is full, dropping message", zap.Stringer("userID", userID))
		return false
	}
}

// Online сообщает, есть ли у игрока активное соединение.
func (m *ConnectionManager) Online(userID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[userID]
	return ok
}
