package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	"coachmarket-backend/internal/features/application/models"
	"coachmarket-backend/internal/features/application/service"
)

type ApplicationHandler struct {
	service service.ApplicationService
}

func NewApplicationHandler(service service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) RegisterRoutes(router, admin *gin.RouterGroup) {
	apps := router.Group("/applications")
	{
		apps.POST("", h.Submit)
		apps.GET("/my-applications", h.ListMine)
		apps.PUT("/:id", h.Update)
	}

	adminApps := admin.Group("/applications")
	{
		adminApps.GET("/pending", h.ListPending)
		adminApps.POST("/:id/approve", h.Approve)
		adminApps.POST("/:id/reject", h.Reject)
	}
}

// @Summary Submit a coaching application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.ServiceApplication
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.service.Submit(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicatePending) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app)
}

// @Summary List own applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ServiceApplication
// @Router /applications/my-applications [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.service.ListMine(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// @Summary Update own application (resets it to pending)
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} models.ServiceApplication
// @Failure 403 {object} map[string]string
// @Router /applications/{id} [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.service.Update(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicatePending):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, app)
}

// @Summary List pending applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ServiceApplication
// @Router /applications/pending [get]
func (h *ApplicationHandler) ListPending(c *gin.Context) {
	apps, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// @Summary Approve application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} listingmodels.PublishedService
// @Failure 409 {object} map[string]string
// @Router /applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	published, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application not found"})
		case errors.Is(err, service.ErrAlreadyDecided):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "application already decided"})
		default:
			middleware.RespondError(c, err)
		}
		return
	}

	audit.SetAction(c, "approve_application", "application", id)
	c.JSON(http.StatusOK, published)
}

// @Summary Reject application
// @Tags applications
// @Accept json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Reject(c.Request.Context(), id, req.Notes); err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application not found"})
		case errors.Is(err, service.ErrAlreadyDecided):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "application already decided"})
		default:
			middleware.RespondError(c, err)
		}
		return
	}

	audit.SetAction(c, "reject_application", "application", id)
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
