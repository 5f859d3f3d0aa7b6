package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	adminrepo "coachmarket-backend/internal/features/admin/repository"
	"coachmarket-backend/internal/features/auth/models"
	"coachmarket-backend/internal/features/auth/service"
	"coachmarket-backend/internal/features/auth/token"
	userrepo "coachmarket-backend/internal/features/user/repository"
)

type AuthHandler struct {
	service service.AuthService
	tokens  *token.Manager
}

func NewAuthHandler(service service.AuthService, tokens *token.Manager) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// RegisterRoutes mounts the public auth endpoints; RegisterProtectedRoutes
// mounts the ones behind the auth middleware.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/admin-login", h.AdminLogin)
		auth.POST("/refresh", h.Refresh)
	}
}

func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.POST("/logout", h.Logout)
		auth.POST("/admin-logout", h.AdminLogout)
	}
}

// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /auth/admin-login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.AdminLogin(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signed, err := h.service.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}

// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} interface{}
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	account, err := h.service.Me(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) || errors.Is(err, adminrepo.ErrAdminNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Tokens are stateless; logout is the client discarding its token.
	c.Status(http.StatusNoContent)
}

// @Summary Admin logout
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/admin-logout [post]
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok || !claims.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	h.service.AdminLogout(c.Request.Context(), claims.AccountID, c.ClientIP())
	c.Status(http.StatusNoContent)
}

func respondLoginError(c *gin.Context, err error) {
	var loginErr *models.LoginError
	if errors.As(err, &loginErr) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":              loginErr.Message,
			"attempts_remaining": loginErr.AttemptsRemaining,
		})
		return
	}

	var statusErr *models.StatusError
	if errors.As(err, &statusErr) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": statusErr.Error()})
		return
	}

	if errors.Is(err, service.ErrAccountBlocked) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrAccountBlocked.Error()})
		return
	}

	middleware.RespondError(c, err)
}
