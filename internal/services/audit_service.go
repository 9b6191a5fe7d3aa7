package services

import (
	"context"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Audit actions
const (
	AuditActionRegister              = "user_registered"
	AuditActionLogin                 = "user_login"
	AuditActionRoomCreated           = "room_created"
	AuditActionRoomDeleted           = "room_deleted"
	AuditActionRoomStatusChanged     = "room_status_changed"
	AuditActionBookingCreated        = "booking_created"
	AuditActionBookingCancelled      = "booking_cancelled"
	AuditActionBookingStatusChanged  = "booking_status_changed"
	AuditActionPaymentRecorded       = "payment_recorded"
	AuditActionComplaintSubmitted    = "complaint_submitted"
	AuditActionComplaintStatusChange = "complaint_status_changed"
)

// Audit entity types
const (
	AuditEntityUser      = "user"
	AuditEntityRoom      = "room"
	AuditEntityBooking   = "booking"
	AuditEntityComplaint = "complaint"
)

// AuditService records state changes in the audit trail
type AuditService struct {
	store   AuditStore
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{
		store:   store,
		enabled: enabled,
		logger:  logger,
	}
}

// AuditEvent represents a state change to be recorded
type AuditEvent struct {
	UserID     string // empty for anonymous events
	Action     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// Log records an event. Audit failures are logged and never fail the caller.
func (s *AuditService) Log(ctx context.Context, event AuditEvent) {
	if !s.enabled {
		return
	}

	details := models.AuditDetails{}
	for k, v := range event.Details {
		details[k] = v
	}
	details["device_info"] = utils.ParseUserAgent(event.UserAgent)

	entry := &models.AuditLog{
		UserID:     optional(event.UserID),
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   optional(event.EntityID),
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		Details:    details,
		CreatedAt:  time.Now(),
	}

	// Detached so a client disconnect does not drop the record of a completed change
	if err := s.store.Insert(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      event.Action,
			"entity_type": event.EntityType,
			"entity_id":   event.EntityID,
		}).WithError(err).Error("Failed to write audit log")
	}
}

// History returns the audit trail for one entity. Staff only.
func (s *AuditService) History(ctx context.Context, session Session, entityType, entityID string) ([]models.AuditLog, error) {
	if err := session.requireStaff(); err != nil {
		return nil, err
	}
	switch entityType {
	case AuditEntityUser, AuditEntityRoom, AuditEntityBooking, AuditEntityComplaint:
	default:
		return nil, invalid("entity_type", "unknown entity type "+entityType)
	}

	entries, err := s.store.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, &PersistenceError{Op: "list audit logs", Err: err}
	}
	return entries, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
