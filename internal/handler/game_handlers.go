package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MakeChoiceRequest определяет тело запроса для выбора игрока.
type MakeChoiceRequest struct {
	ChoiceID string `json:"choice_id" validate:"required"`
}

func (h *GameplayHandler) startGame(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	state, err := h.service.StartGame(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Error starting game", zap.Stringer("userID", userID), zap.Error(err))
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, state)
}

func (h *GameplayHandler) listGames(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	games, err := h.service.ListGames(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Error listing games", zap.Stringer("userID", userID), zap.Error(err))
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, games)
}

func (h *GameplayHandler) getGame(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	gameID, err := parseGameID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
	}

	state, err := h.service.GetGame(c.Request().Context(), userID, gameID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *GameplayHandler) makeChoice(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	gameID, err := parseGameID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
	}

	var req MakeChoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "choice_id is required"})
	}

	state, err := h.service.MakeChoice(c.Request().Context(), userID, gameID, req.ChoiceID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *GameplayHandler) resetGame(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	gameID, err := parseGameID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
	}

	state, err := h.service.ResetGame(c.Request().Context(), userID, gameID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *GameplayHandler) explorePoint(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	gameID, err := parseGameID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
	}

	result, err := h.service.ExplorePoint(c.Request().Context(), userID, gameID, c.Param("point_id"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *GameplayHandler) deleteGame(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, err)
	}
	gameID, err := parseGameID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
	}

	if err := h.service.DeleteGame(c.Request().Context(), userID, gameID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GameplayHandler) getScene(c echo.Context) error {
	scene, err := h.service.GetScene(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, scene)
}
