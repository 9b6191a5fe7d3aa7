package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RoomAPI is the room operations the HTTP layer needs
type RoomAPI interface {
	Create(ctx context.Context, session services.Session, req models.CreateRoomRequest) (*models.Room, error)
	SetStatus(ctx context.Context, session services.Session, roomID string, status models.RoomStatus) error
	Delete(ctx context.Context, session services.Session, roomID string) error
	List(ctx context.Context, status *models.RoomStatus) ([]models.Room, error)
	Get(ctx context.Context, roomID string) (*models.Room, error)
}

// RoomHandler handles room HTTP requests
type RoomHandler struct {
	rooms  RoomAPI
	audit  AuditRecorder
	logger *logrus.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomAPI, audit AuditRecorder, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:  rooms,
		audit:  audit,
		logger: logger,
	}
}

// ListRooms handles GET /api/v1/rooms (optional ?status=)
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var filter *models.RoomStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.RoomStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "status must be one of AVAILABLE, OCCUPIED, CLEANING, DO_NOT_DISTURB",
				Field:   "status",
			})
			return
		}
		filter = &status
	}

	rooms, err := h.rooms.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
		"total": len(rooms),
	})
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRoomTypes handles GET /api/v1/room-types
func (h *RoomHandler) ListRoomTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"room_types": models.RoomTypes()})
}

// CreateRoom handles POST /api/v1/rooms (staff)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), middleware.SessionOrAnonymous(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionRoomCreated, services.AuditEntityRoom, room.ID, map[string]interface{}{
		"number": room.Number,
		"type":   room.Type,
	})
	c.JSON(http.StatusCreated, room)
}

// UpdateRoomStatus handles PATCH /api/v1/rooms/:id/status (staff)
func (h *RoomHandler) UpdateRoomStatus(c *gin.Context) {
	var req models.UpdateRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	roomID := c.Param("id")
	ctx := c.Request.Context()
	if err := h.rooms.SetStatus(ctx, middleware.SessionOrAnonymous(c), roomID, req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionRoomStatusChanged, services.AuditEntityRoom, roomID, map[string]interface{}{
		"status": req.Status,
	})

	room, err := h.rooms.Get(ctx, roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/v1/rooms/:id (staff)
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")
	if err := h.rooms.Delete(c.Request.Context(), middleware.SessionOrAnonymous(c), roomID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionRoomDeleted, services.AuditEntityRoom, roomID, nil)
	c.Status(http.StatusNoContent)
}
