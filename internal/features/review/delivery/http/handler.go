package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	requestrepo "coachmarket-backend/internal/features/request/repository"
	"coachmarket-backend/internal/features/review/models"
	"coachmarket-backend/internal/features/review/service"
)

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) RegisterRoutes(router, public *gin.RouterGroup) {
	router.POST("/reviews", h.Create)
	public.GET("/coaches/:id/reviews", h.ListByCoach)
}

// @Summary Review a closed request
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Review
// @Failure 409 {object} map[string]string
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.Create(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, requestrepo.ErrRequestNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrNotRequester):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrRequestNotClosed):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, review)
}

// @Summary List reviews of a coach
// @Tags reviews
// @Produce json
// @Param id path int true "Coach user ID"
// @Success 200 {array} models.Review
// @Router /coaches/{id}/reviews [get]
func (h *ReviewHandler) ListByCoach(c *gin.Context) {
	coachID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	reviews, err := h.service.ListByCoach(c.Request.Context(), coachID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
