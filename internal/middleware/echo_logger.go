package middleware

import (
	"net/http"
	"time"

	"ronin-novel/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoZapLogger возвращает middleware для Echo, которое логирует запросы с помощью zap.
// Кроме URI пишет шаблон маршрута (route), а для авторизованных запросов еще и player_id.
func EchoZapLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			// Базовые поля собираем до вызова хендлера
			requestFields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			if id != "" {
				requestFields = append(requestFields, zap.String("request_id", id))
			}

			err := next(c)

			fields := append(requestFields,
				zap.String("route", c.Path()), // /games/:id/choices, а не конкретный ID
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
			)
			// AuthMiddleware подменяет запрос, поэтому контекст читаем уже после хендлера
			if playerID, ok := models.GetUserIDFromContext(c.Request().Context()); ok {
				fields = append(fields, zap.Stringer("player_id", playerID))
			}

			if err != nil {
				// Статус ответа по ошибке выставит сам Echo
				log.Error("Handler error", append(fields, zap.Error(err))...)
				return err
			}

			n := res.Status
			switch {
			case n >= http.StatusInternalServerError:
				log.Error("Server error", fields...)
			case n >= http.StatusBadRequest:
				log.Warn("Client error", fields...)
			case n >= http.StatusMultipleChoices:
				log.Warn("Redirection", fields...)
			default:
				log.Info("Success", fields...)
			}
			return nil
		}
	}
}
