package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEmail indicates the email is blank
	ErrEmptyEmail = errors.New("email is required")

	// ErrInvalidEmail indicates the email is not a plain address
	ErrInvalidEmail = errors.New("please enter a valid email address")

	// ErrPasswordTooShort indicates the password has fewer than MinPasswordLength characters
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordTooWeak indicates the password lacks a letter or a digit
	ErrPasswordTooWeak = errors.New("password must contain at least one letter and one number")

	// ErrNameTooShort indicates the display name has fewer than MinNameLength characters
	ErrNameTooShort = errors.New("name must be at least 2 characters")

	// ErrInvalidPhone indicates the phone number has characters other than digits, spaces, dashes and a leading +
	ErrInvalidPhone = errors.New("phone number can only contain digits and an optional leading +")
)

const (
	MinPasswordLength = 6
	MinNameLength     = 2
)

var phoneRegex = regexp.MustCompile(`^\+?\d{7,15}$`)

// AccountValidator checks local registration input
type AccountValidator struct{}

// NewAccountValidator creates a new account validator instance
func NewAccountValidator() *AccountValidator {
	return &AccountValidator{}
}

// ValidateEmail returns the trimmed, lowercased address
func (v *AccountValidator) ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// ValidatePassword requires MinPasswordLength characters with at least one letter and one digit
func (v *AccountValidator) ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}

// ValidateName returns the trimmed display name
func (v *AccountValidator) ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinNameLength {
		return "", ErrNameTooShort
	}
	return name, nil
}

// SanitizePhone strips spaces and dashes from an optional phone number.
// An empty input is valid and returns "".
func (v *AccountValidator) SanitizePhone(phone string) (string, error) {
	sanitized := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if sanitized == "" {
		return "", nil
	}
	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidPhone
	}
	return sanitized, nil
}
