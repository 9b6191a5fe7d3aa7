package models

import "time"

// UserRole is authoritative for staff-only checks and is read from the user record
type UserRole string

const (
	RoleStaff    UserRole = "STAFF"
	RoleCustomer UserRole = "CUSTOMER"
	RoleGuest    UserRole = "GUEST"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStaff, RoleCustomer, RoleGuest:
		return true
	}
	return false
}

// User represents an account (users table). ID is either a locally issued UUID
// or the identity provider's uid.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         UserRole  `json:"role" db:"role"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest represents a local account registration
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// LoginRequest represents a local email/password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after register/login
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
