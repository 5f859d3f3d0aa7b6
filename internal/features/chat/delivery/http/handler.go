package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/audit"
	"coachmarket-backend/internal/features/chat/models"
	"coachmarket-backend/internal/features/chat/service"
)

type ChatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(router, admin *gin.RouterGroup) {
	chats := router.Group("/chats")
	{
		chats.GET("", h.ListMine)
		chats.GET("/:id/messages", h.Messages)
		chats.POST("/:id/messages", h.Send)
	}

	adminChats := admin.Group("/chats")
	{
		adminChats.GET("", h.ListAll)
		adminChats.GET("/:id/messages", h.ReadAny)
	}
}

// @Summary List own chats
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Chat
// @Router /chats [get]
func (h *ChatHandler) ListMine(c *gin.Context) {
	chats, err := h.service.ListMine(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary Read chat history
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {array} models.Message
// @Router /chats/{id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	messages, err := h.service.Messages(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// @Summary Send a message
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 201 {object} models.Message
// @Failure 409 {object} map[string]string
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), middleware.ActorID(c), id, req.Content)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// @Summary List all chats
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Chat
// @Router /admin/chats [get]
func (h *ChatHandler) ListAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	chats, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary Read any chat history
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {array} models.Message
// @Router /admin/chats/{id}/messages [get]
func (h *ChatHandler) ReadAny(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	messages, err := h.service.ReadAny(c.Request.Context(), id)
	if err != nil {
		respondChatError(c, err)
		return
	}

	audit.SetAction(c, "read_chat", "chat", id)
	c.JSON(http.StatusOK, messages)
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "chat not found"})
	case errors.Is(err, service.ErrNotParticipant):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrChatArchived):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
