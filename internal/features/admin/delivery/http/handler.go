package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	"coachmarket-backend/internal/features/admin/models"
	"coachmarket-backend/internal/features/admin/service"
	usermodels "coachmarket-backend/internal/features/user/models"
	userrepo "coachmarket-backend/internal/features/user/repository"
	userservice "coachmarket-backend/internal/features/user/service"
)

type AdminHandler struct {
	service service.AdminService
	users   userservice.UserService
}

func NewAdminHandler(service service.AdminService, users userservice.UserService) *AdminHandler {
	return &AdminHandler{service: service, users: users}
}

func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/analytics", h.Analytics)
	admin.GET("/logs", h.ListLogs)

	users := admin.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.PUT("/:id/status", h.UpdateUserStatus)
		users.POST("/:id/unblock", h.UnblockUser)
	}

	// Admin management is restricted to the super admin; the live-record
	// check in the service backs up the token check here.
	admins := admin.Group("/admins", middleware.RequireSuperAdmin())
	{
		admins.POST("", h.CreateAdmin)
		admins.GET("", h.ListAdmins)
		admins.PUT("/:id", h.UpdateAdmin)
		admins.DELETE("/:id", h.DeleteAdmin)
		admins.POST("/:id/unblock", h.UnblockAdmin)
	}
}

// @Summary Admin dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Revenue and volume analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Analytics
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// @Summary Admin action log
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AdminLog
// @Router /admin/logs [get]
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.service.ListLogs(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	// Reading the log is itself a logged action.
	audit.SetAction(c, "view_logs", "", 0)
	c.JSON(http.StatusOK, logs)
}

// @Summary List user accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} usermodels.UserResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary Change a user's account status
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req usermodels.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondUserError(c, err)
		return
	}

	audit.SetAction(c, "update_user_status", "user", id)
	audit.SetDetails(c, req.Status)
	c.Status(http.StatusNoContent)
}

// @Summary Unblock a user and reset failed logins
// @Tags admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /admin/users/{id}/unblock [post]
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.users.Unblock(c.Request.Context(), id); err != nil {
		respondUserError(c, err)
		return
	}

	audit.SetAction(c, "unblock_user", "user", id)
	c.Status(http.StatusNoContent)
}

// @Summary Create an admin account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Admin
// @Router /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.service.CreateAdmin(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	audit.SetAction(c, "create_admin", "admin", admin.ID)
	c.JSON(http.StatusCreated, admin)
}

// @Summary List admin accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Admin
// @Router /admin/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.service.ListAdmins(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

// @Summary Update an admin account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 200 {object} models.Admin
// @Router /admin/admins/{id} [put]
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.service.UpdateAdmin(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	audit.SetAction(c, "update_admin", "admin", id)
	c.JSON(http.StatusOK, admin)
}

// @Summary Delete an admin account
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 204
// @Router /admin/admins/{id} [delete]
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAdmin(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		respondAdminError(c, err)
		return
	}

	audit.SetAction(c, "delete_admin", "admin", id)
	c.Status(http.StatusNoContent)
}

// @Summary Unblock an admin and reset failed logins
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 204
// @Router /admin/admins/{id}/unblock [post]
func (h *AdminHandler) UnblockAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.UnblockAdmin(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		respondAdminError(c, err)
		return
	}

	audit.SetAction(c, "unblock_admin", "admin", id)
	c.Status(http.StatusNoContent)
}

func respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdminNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotSuperAdmin), errors.Is(err, service.ErrActorInactive):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrSelfDeletion):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userrepo.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, userservice.ErrInvalidStatus):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		middleware.RespondError(c, err)
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
