package services

import "github.com/ehotel/hotel-backend/internal/models"

// Session is the request-scoped identity every service call receives.
// The zero value is an anonymous caller.
type Session struct {
	UserID      string
	Role        models.UserRole
	DisplayName string
}

// SessionFromUser builds a session from an authoritative user record
func SessionFromUser(user *models.User) Session {
	return Session{
		UserID:      user.ID,
		Role:        user.Role,
		DisplayName: user.Name,
	}
}

// Authenticated reports whether the session belongs to a signed-in user
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// IsStaff reports whether the session carries the STAFF role
func (s Session) IsStaff() bool {
	return s.Authenticated() && s.Role == models.RoleStaff
}

// requireUser fails with ErrAuthentication for anonymous sessions
func (s Session) requireUser() error {
	if !s.Authenticated() {
		return ErrAuthentication
	}
	return nil
}

// requireStaff fails unless the session is a signed-in STAFF user
func (s Session) requireStaff() error {
	if err := s.requireUser(); err != nil {
		return err
	}
	if s.Role != models.RoleStaff {
		return ErrAuthorization
	}
	return nil
}

// requireBooker fails unless the session may create bookings and complaints (CUSTOMER or STAFF)
func (s Session) requireBooker() error {
	if err := s.requireUser(); err != nil {
		return err
	}
	if s.Role != models.RoleCustomer && s.Role != models.RoleStaff {
		return ErrAuthorization
	}
	return nil
}

// canAccess reports whether the session may act on a record owned by ownerID
func (s Session) canAccess(ownerID string) bool {
	return s.IsStaff() || (s.Authenticated() && s.UserID == ownerID)
}
