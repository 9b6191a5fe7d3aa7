package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/pkg/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Identity is what an identity provider vouches for after verifying a token
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenIssuer signs access tokens for the local identity provider
type TokenIssuer interface {
	GenerateAccessToken(userID, email, name string) (string, time.Time, error)
}

// AuthService resolves verified identities to user records and, for the
// local provider, registers and logs in users with email and password.
type AuthService struct {
	users         UserStore
	issuer        TokenIssuer
	validator     *validator.AccountValidator
	bcryptCost    int
	autoProvision bool
	logger        *logrus.Logger
}

// AuthConfig controls account handling
type AuthConfig struct {
	BcryptCost int
	// AutoProvision creates a CUSTOMER record the first time an externally
	// verified identity is seen
	AutoProvision bool
}

// NewAuthService creates an auth service. issuer may be nil when only an
// external identity provider is in use.
func NewAuthService(users UserStore, issuer TokenIssuer, config AuthConfig, logger *logrus.Logger) *AuthService {
	cost := config.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:         users,
		issuer:        issuer,
		validator:     validator.NewAccountValidator(),
		bcryptCost:    cost,
		autoProvision: config.AutoProvision,
		logger:        logger,
	}
}

// Register creates a CUSTOMER account and returns an access token for it
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if s.issuer == nil {
		return nil, ErrAuthorization
	}

	email, err := s.validator.ValidateEmail(req.Email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, invalid("password", err.Error())
	}
	name, err := s.validator.ValidateName(req.Name)
	if err != nil {
		return nil, invalid("name", err.Error())
	}
	phone, err := s.validator.SanitizePhone(req.PhoneNumber)
	if err != nil {
		return nil, invalid("phone_number", err.Error())
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, &PersistenceError{Op: "lookup user", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, &PersistenceError{Op: "hash password", Err: err}
	}
	hashed := string(hash)

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         models.RoleCustomer,
		PhoneNumber:  phone,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, &PersistenceError{Op: "create user", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return s.issue(user)
}

// Login verifies an email and password and returns an access token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if s.issuer == nil {
		return nil, ErrAuthorization
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &PersistenceError{Op: "lookup user", Err: err}
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return s.issue(user)
}

// ResolveUser loads the authoritative user record for a verified identity
func (s *AuthService) ResolveUser(ctx context.Context, identity Identity) (*models.User, error) {
	if identity.UID == "" {
		return nil, ErrAuthentication
	}

	user, err := s.users.GetByID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, &PersistenceError{Op: "lookup user", Err: err}
	}
	if !s.autoProvision {
		return nil, ErrAuthentication
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email != "" {
		owner, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != identity.UID:
			// Existing accounts are never linked to an external identity by email
			s.logger.WithFields(logrus.Fields{
				"user_id":  identity.UID,
				"owner_id": owner.ID,
			}).Warn("External identity email belongs to another account; provisioning without email")
			email = ""
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return nil, &PersistenceError{Op: "lookup user email", Err: err}
		}
	}

	now := time.Now()
	provisioned := &models.User{
		ID:        identity.UID,
		Email:     email,
		Name:      identity.Name,
		Role:      models.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for {
		created, err := s.users.CreateIfAbsent(ctx, provisioned)
		if err != nil {
			return nil, &PersistenceError{Op: "provision user", Err: err}
		}
		if created {
			s.logger.WithField("user_id", identity.UID).Info("Provisioned user for external identity")
		}

		// Re-read so a concurrent provisioning wins consistently
		user, err = s.users.GetByID(ctx, identity.UID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrNotFound) || provisioned.Email == "" {
			return nil, storeError("lookup user", "user", identity.UID, err)
		}
		// The email was claimed between the check and the insert
		provisioned.Email = ""
	}
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.issuer.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, &PersistenceError{Op: "issue token", Err: err}
	}
	return &models.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
