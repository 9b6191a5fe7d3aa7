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

// ComplaintAPI is the complaint operations the HTTP layer needs
type ComplaintAPI interface {
	Submit(ctx context.Context, session services.Session, req models.SubmitComplaintRequest) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, session services.Session, complaintID string, status models.ComplaintStatus) (*models.Complaint, error)
	List(ctx context.Context, session services.Session) ([]models.Complaint, error)
}

// ComplaintHandler handles complaint HTTP requests
type ComplaintHandler struct {
	complaints ComplaintAPI
	audit      AuditRecorder
	logger     *logrus.Logger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaints ComplaintAPI, audit AuditRecorder, logger *logrus.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		audit:      audit,
		logger:     logger,
	}
}

// SubmitComplaint handles POST /api/v1/complaints
func (h *ComplaintHandler) SubmitComplaint(c *gin.Context) {
	var req models.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaints.Submit(c.Request.Context(), middleware.SessionOrAnonymous(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionComplaintSubmitted, services.AuditEntityComplaint, complaint.ID, map[string]interface{}{
		"booking_id": complaint.BookingID,
		"room_id":    complaint.RoomID,
	})
	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints handles GET /api/v1/complaints (customers see their own, staff see all)
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	complaints, err := h.complaints.List(c.Request.Context(), middleware.SessionOrAnonymous(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"total":      len(complaints),
	})
}

// UpdateComplaintStatus handles PATCH /api/v1/complaints/:id/status (staff)
func (h *ComplaintHandler) UpdateComplaintStatus(c *gin.Context) {
	var req models.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	complaint, err := h.complaints.UpdateStatus(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionComplaintStatusChange, services.AuditEntityComplaint, complaint.ID, map[string]interface{}{
		"status": complaint.Status,
	})
	c.JSON(http.StatusOK, complaint)
}
