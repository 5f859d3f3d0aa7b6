package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	"coachmarket-backend/internal/features/game/models"
	"coachmarket-backend/internal/features/game/service"
)

type GameHandler struct {
	service service.GameService
}

func NewGameHandler(service service.GameService) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) RegisterRoutes(router, admin *gin.RouterGroup) {
	games := router.Group("/games")
	{
		games.GET("", h.ListGames)
		games.GET("/:id", h.GetGame)
	}

	adminGames := admin.Group("/games")
	{
		adminGames.POST("", h.CreateGame)
		adminGames.PUT("/:id", h.UpdateGame)
		adminGames.DELETE("/:id", h.DeactivateGame)
	}
}

// @Summary List games
// @Tags games
// @Produce json
// @Success 200 {array} models.Game
// @Router /games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	games, err := h.service.ListGames(c.Request.Context(), includeInactive)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// @Summary Get game
// @Tags games
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {object} models.Game
// @Failure 404 {object} map[string]string
// @Router /games/{id} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	game, err := h.service.GetGame(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// @Summary Create game
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Game
// @Router /games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.service.CreateGame(c.Request.Context(), &req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audit.SetAction(c, "create_game", "game", game.ID)
	audit.SetDetails(c, "created game "+game.Name)
	c.JSON(http.StatusCreated, game)
}

// @Summary Update game
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Game ID"
// @Success 200 {object} models.Game
// @Router /games/{id} [put]
func (h *GameHandler) UpdateGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.service.UpdateGame(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audit.SetAction(c, "update_game", "game", id)
	c.JSON(http.StatusOK, game)
}

// @Summary Deactivate game
// @Tags games
// @Security BearerAuth
// @Param id path int true "Game ID"
// @Success 204
// @Router /games/{id} [delete]
func (h *GameHandler) DeactivateGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateGame(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		middleware.RespondError(c, err)
		return
	}

	audit.SetAction(c, "delete_game", "game", id)
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
