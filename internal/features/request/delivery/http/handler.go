package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	listingrepo "coachmarket-backend/internal/features/listing/repository"
	"coachmarket-backend/internal/features/request/models"
	"coachmarket-backend/internal/features/request/service"
)

type RequestHandler struct {
	service service.RequestService
}

func NewRequestHandler(service service.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

func (h *RequestHandler) RegisterRoutes(router, admin *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.GET("", h.ListMine)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/accept", h.Accept)
		requests.POST("/:id/confirm", h.Confirm)
		requests.POST("/:id/reject", h.Reject)
		requests.POST("/:id/cancel", h.Cancel)
		requests.POST("/:id/complete", h.Complete)
	}

	adminRequests := admin.Group("/requests")
	{
		adminRequests.GET("", h.ListAll)
		adminRequests.POST("/:id/approve-completion", h.ApproveCompletion)
		adminRequests.POST("/:id/reopen-completion", h.ReopenCompletion)
	}
	admin.GET("/completions/pending", h.ListPendingCompletions)
}

// @Summary Request a published service
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.ServiceRequest
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req models.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.Create(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, listingrepo.ErrServiceNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "service not found"})
		case errors.Is(err, service.ErrServiceInactive), errors.Is(err, service.ErrOwnService):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, request)
}

// @Summary List own requests (as requester or coach)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ServiceRequest
// @Router /requests [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	requests, err := h.service.ListMine(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// @Summary Get one request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := h.service.Get(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// @Summary Accept a pending request (coach)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/accept [post]
func (h *RequestHandler) Accept(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

// @Summary Confirm an accepted request (requester)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/confirm [post]
func (h *RequestHandler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// @Summary Decline a request (coach)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// @Summary Cancel a request (either party, before completion review)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// @Summary Mark the work done (coach)
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.Complete(c.Request.Context(), middleware.ActorID(c), id, req.Notes)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// @Summary List all requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ServiceRequest
// @Router /admin/requests [get]
func (h *RequestHandler) ListAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// @Summary Approve a completion and pay out
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.CloseResult
// @Failure 409 {object} map[string]string
// @Router /admin/requests/{id}/approve-completion [post]
func (h *RequestHandler) ApproveCompletion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.ReviewCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ApproveCompletion(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	audit.SetAction(c, "approve_completion", "request", id)
	c.JSON(http.StatusOK, result)
}

// @Summary Send a completion back for revision
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} models.ServiceRequest
// @Failure 409 {object} map[string]string
// @Router /admin/requests/{id}/reopen-completion [post]
func (h *RequestHandler) ReopenCompletion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.ReviewCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.ReopenCompletion(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	audit.SetAction(c, "reopen_completion", "request", id)
	c.JSON(http.StatusOK, request)
}

// @Summary List completions awaiting review
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ServiceCompletion
// @Router /admin/completions/pending [get]
func (h *RequestHandler) ListPendingCompletions(c *gin.Context) {
	completions, err := h.service.ListPendingCompletions(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, completions)
}

func (h *RequestHandler) transition(c *gin.Context, fn func(ctx context.Context, actorID, id int64) (*models.ServiceRequest, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := fn(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrCompletionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotParticipant):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIllegalTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.RespondError(c, err)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
