package middleware

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/ehotel/hotel-backend/internal/config"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/ehotel/hotel-backend/pkg/jwt"
	"google.golang.org/api/option"
)

// JWTVerifier verifies tokens issued by the local identity provider
type JWTVerifier struct {
	service *jwt.Service
}

// NewJWTVerifier wraps a JWT service as a TokenVerifier
func NewJWTVerifier(service *jwt.Service) *JWTVerifier {
	return &JWTVerifier{service: service}
}

// Verify implements TokenVerifier
func (v *JWTVerifier) Verify(_ context.Context, token string) (*services.Identity, error) {
	claims, err := v.service.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, err
	}
	return &services.Identity{
		UID:   claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// IDTokenVerifier is the subset of the Firebase auth client used here
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens
type FirebaseVerifier struct {
	client IDTokenVerifier
}

// NewFirebaseVerifier wraps a Firebase auth client as a TokenVerifier
func NewFirebaseVerifier(client IDTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify implements TokenVerifier
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*services.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, err
	}
	if decoded.UID == "" {
		return nil, errors.New("id token has no uid")
	}

	identity := &services.Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}

// NewFirebaseAuthClient initializes the Firebase Admin SDK and returns its auth client
func NewFirebaseAuthClient(ctx context.Context, cfg config.FirebaseConfig) (*auth.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return client, nil
}
