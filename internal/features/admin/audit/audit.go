// Package audit records every admin-role mutation as one append-only
// AdminLog row. It is wired as a middleware decorator around the admin
// route groups so handlers cannot forget to log; handlers only declare the
// action tag and target.
package audit

import (
	"context"

	"github.com/gin-gonic/gin"

	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/middleware"
	"coachmarket-backend/internal/features/admin/models"
)

const (
	actionKey     = "audit_action"
	targetTypeKey = "audit_target_type"
	targetIDKey   = "audit_target_id"
	detailsKey    = "audit_details"
)

// Writer persists audit entries.
type Writer interface {
	InsertLog(ctx context.Context, entry *models.AdminLog) error
}

// Recorder writes audit rows and exposes the gin decorator.
type Recorder struct {
	writer Writer
}

func NewRecorder(writer Writer) *Recorder {
	return &Recorder{writer: writer}
}

// SetAction declares the audit action for the current request. Called by
// admin handlers before returning a success response.
func SetAction(c *gin.Context, action, targetType string, targetID int64) {
	c.Set(actionKey, action)
	c.Set(targetTypeKey, targetType)
	c.Set(targetIDKey, targetID)
}

// SetDetails attaches a human-readable details string to the audit entry.
func SetDetails(c *gin.Context, details string) {
	c.Set(detailsKey, details)
}

// Middleware writes one AdminLog row after a successful admin mutation.
// Audit failures are logged to the operator and never surfaced to the
// caller.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := c.GetString(actionKey)
		if action == "" || c.Writer.Status() >= 400 {
			return
		}

		claims, ok := middleware.GetClaims(c)
		if !ok || !claims.IsAdmin() {
			return
		}

		entry := &models.AdminLog{
			AdminID:    claims.AccountID,
			Action:     action,
			TargetType: c.GetString(targetTypeKey),
			Details:    c.GetString(detailsKey),
			IPAddress:  c.ClientIP(),
		}
		if id := c.GetInt64(targetIDKey); id != 0 {
			entry.TargetID = &id
		}

		r.Write(c.Request.Context(), entry)
	}
}

// Write persists an entry best-effort. Used directly for the admin login
// and logout events that happen outside the decorated route groups.
func (r *Recorder) Write(ctx context.Context, entry *models.AdminLog) {
	if err := r.writer.InsertLog(ctx, entry); err != nil {
		logger.Error().
			Err(err).
			Int64("admin_id", entry.AdminID).
			Str("action", entry.Action).
			Msg("audit log write failed")
	}
}
