package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmarket-backend/internal/features/admin/models"
	"coachmarket-backend/internal/features/auth/token"
)

type recordingWriter struct {
	entries []*models.AdminLog
}

func (w *recordingWriter) InsertLog(_ context.Context, entry *models.AdminLog) error {
	w.entries = append(w.entries, entry)
	return nil
}

func adminGroup(recorder *Recorder) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/admin", func(c *gin.Context) {
		c.Set("claims", &token.Claims{AccountID: 5, Role: token.RoleAdmin})
	}, recorder.Middleware())
	return router, group
}

func TestMiddlewareWritesDeclaredAction(t *testing.T) {
	writer := &recordingWriter{}
	recorder := NewRecorder(writer)
	router, group := adminGroup(recorder)

	group.GET("/logs", func(c *gin.Context) {
		SetAction(c, "view_logs", "", 0)
		c.JSON(http.StatusOK, []string{})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/logs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, writer.entries, 1)
	entry := writer.entries[0]
	assert.Equal(t, int64(5), entry.AdminID)
	assert.Equal(t, "view_logs", entry.Action)
	assert.Nil(t, entry.TargetID)
}

func TestMiddlewareSkipsFailuresAndUndeclaredRoutes(t *testing.T) {
	writer := &recordingWriter{}
	recorder := NewRecorder(writer)
	router, group := adminGroup(recorder)

	group.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	group.POST("/games", func(c *gin.Context) {
		SetAction(c, "create_game", "game", 3)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/games", nil))

	assert.Empty(t, writer.entries)
}
