package ws

import (
	"net/http"
	"time"

	"ronin-novel/internal/middleware"
	"ronin-novel/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 512
)

// Handler обрабатывает запросы на установку WebSocket соединения.
type Handler struct {
	manager  *ConnectionManager
	verify   middleware.TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler создает обработчик. allowedOrigins пустой или содержит "*" - любой Origin разрешен.
func NewHandler(manager *ConnectionManager, verify middleware.TokenVerifier, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		verify:  verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.Named("WebSocketHandler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeHTTP проверяет токен из query-параметра 'token' и поднимает соединение.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.Warn("Missing 'token' query parameter")
		models.SendJSONError(w, "Unauthorized: Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.verify(r.Context(), tokenString)
	if err != nil {
		h.logger.Warn("Invalid token", zap.Error(err))
		models.SendJSONError(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже записал ответ
		h.logger.Error("Failed to upgrade connection", zap.Stringer("userID", claims.UserID), zap.Error(err))
		return
	}

	client := NewClient(claims.UserID, conn)
	if !h.manager.RegisterClient(client) {
		_ = conn.Close()
		return
	}
	log := h.logger.With(zap.Stringer("userID", claims.UserID))
	log.Info("WebSocket connection established")

	go client.writePump(log)
	go client.readPump(h.manager, log)
}

// readPump читает входящие кадры только ради pong и закрытия соединения.
func (c *Client) readPump(manager *ConnectionManager, logger *zap.Logger) {
	defer func() {
		manager.UnregisterClient(c)
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		logger.Debug("Received unexpected message from client (ignored)")
	}
}

// writePump отправляет сообщения из очереди, по одному на кадр, и пингует клиента.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
