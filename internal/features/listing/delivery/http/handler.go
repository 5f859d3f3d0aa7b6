package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/listing/models"
	"coachmarket-backend/internal/features/listing/service"
)

type ListingHandler struct {
	service service.ListingService
}

func NewListingHandler(service service.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes mounts the browse endpoints on the public group and the
// profile mutations on the authenticated one.
func (h *ListingHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	services := public.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
	}

	coaches := public.Group("/coaches")
	{
		coaches.GET("", h.ListCoaches)
		coaches.GET("/:id", h.GetCoach)
	}

	authed.POST("/coaches/:id/specializations", h.AddSpecialization)
}

// @Summary Browse published services
// @Tags services
// @Produce json
// @Success 200 {array} models.PublishedService
// @Router /services [get]
func (h *ListingHandler) ListServices(c *gin.Context) {
	var filter models.ServiceFilter
	if v := c.Query("game_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid game_id"})
			return
		}
		filter.GameID = id
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	services, err := h.service.ListServices(c.Request.Context(), filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// @Summary Get published service
// @Tags services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} models.PublishedService
// @Failure 404 {object} map[string]string
// @Router /services/{id} [get]
func (h *ListingHandler) GetService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// @Summary Coach directory
// @Tags coaches
// @Produce json
// @Success 200 {array} models.Coach
// @Router /coaches [get]
func (h *ListingHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.service.ListCoaches(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

// @Summary Get coach profile
// @Tags coaches
// @Produce json
// @Param id path int true "Coach user ID"
// @Success 200 {object} models.Coach
// @Failure 404 {object} map[string]string
// @Router /coaches/{id} [get]
func (h *ListingHandler) GetCoach(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	coach, err := h.service.GetCoach(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCoachNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "coach not found"})
			return
		}
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coach)
}

// @Summary Add a specialization to own coach profile
// @Tags coaches
// @Accept json
// @Security BearerAuth
// @Param id path int true "Coach user ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Router /coaches/{id}/specializations [post]
func (h *ListingHandler) AddSpecialization(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.AddSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.AddSpecialization(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCoachNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "coach not found"})
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
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
