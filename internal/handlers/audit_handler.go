package handlers

import (
	"context"
	"net/http"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuditHistoryAPI is the read side of the audit trail
type AuditHistoryAPI interface {
	History(ctx context.Context, session services.Session, entityType, entityID string) ([]models.AuditLog, error)
}

// AuditHandler serves audit history to staff
type AuditHandler struct {
	history AuditHistoryAPI
	logger  *logrus.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(history AuditHistoryAPI, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{history: history, logger: logger}
}

// GetHistory handles GET /api/v1/audit/:entity_type/:entity_id (staff)
func (h *AuditHandler) GetHistory(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID := c.Param("entity_id")

	entries, err := h.history.History(c.Request.Context(), middleware.SessionOrAnonymous(c), entityType, entityID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_type": entityType,
		"entity_id":   entityID,
		"entries":     entries,
		"total":       len(entries),
	})
}
