package handler

import (
	"errors"
	"net/http"

	"ronin-novel/internal/game"
	"ronin-novel/internal/middleware"
	"ronin-novel/internal/models"
	"ronin-novel/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// RequestValidator подключает validator/v10 к echo (c.Validate).
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// GameplayHandler обрабатывает HTTP запросы игровых сессий.
type GameplayHandler struct {
	service service.GameplayService
	verify  middleware.TokenVerifier
	logger  *zap.Logger
}

// NewGameplayHandler создает новый GameplayHandler.
func NewGameplayHandler(s service.GameplayService, verify middleware.TokenVerifier, logger *zap.Logger) *GameplayHandler {
	return &GameplayHandler{
		service: s,
		verify:  verify,
		logger:  logger.Named("GameplayHandler"),
	}
}

// RegisterRoutes регистрирует маршруты. Echo должен иметь Validator (см. NewRequestValidator).
func (h *GameplayHandler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := echo.WrapMiddleware(middleware.AuthMiddleware(h.verify, h.logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Сцены сюжета публичны: это статические данные
	e.GET("/story/scenes/:id", h.getScene)

	gamesGroup := e.Group("/games", authMiddleware)
	{
		gamesGroup.POST("", h.startGame)
		gamesGroup.GET("", h.listGames)
		gamesGroup.GET("/:id", h.getGame)
		gamesGroup.POST("/:id/choices", h.makeChoice)
		gamesGroup.POST("/:id/reset", h.resetGame)
		gamesGroup.GET("/:id/exploration/:point_id", h.explorePoint)
		gamesGroup.DELETE("/:id", h.deleteGame)
	}
}

// --- Вспомогательные функции --- //

func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := models.GetUserIDFromContext(c.Request().Context())
	if !ok || userID == uuid.Nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	return userID, nil
}

func parseGameID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, models.ErrInvalidInput
	}
	return id, nil
}

func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "Access to this game is forbidden"}
	case errors.Is(err, models.ErrGameNotFound), errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Game not found"}
	case errors.Is(err, models.ErrSceneNotFound), errors.Is(err, game.ErrExplorationPointNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrConcurrentUpdate):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: "Game was modified by another request, reload and retry"}
	case errors.Is(err, game.ErrUnknownChoice), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, game.ErrDanglingScene):
		statusCode = http.StatusUnprocessableEntity
		apiErr = APIError{Message: err.Error()}
	default:
		// Детали внутренних ошибок клиенту не отдаем
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: models.ErrInternalServer.Error()}
	}
	return c.JSON(statusCode, apiErr)
}
