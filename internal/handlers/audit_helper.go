package handlers

import (
	"context"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/ehotel/hotel-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuditRecorder is the write side of the audit trail
type AuditRecorder interface {
	Log(ctx context.Context, event services.AuditEvent)
}

// recordAudit logs a state change for the calling user. A nil recorder disables auditing.
func recordAudit(c *gin.Context, audit AuditRecorder, action, entityType, entityID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	session := middleware.SessionOrAnonymous(c)
	audit.Log(c.Request.Context(), services.AuditEvent{
		UserID:     session.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  utils.GetRealIP(c),
		UserAgent:  utils.GetUserAgent(c),
		Details:    details,
	})
}
