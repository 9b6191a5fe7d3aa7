package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	identifierEmail = "email"
	identifierIP    = "ip"
)

// RateLimitConfig holds login throttling limits
type RateLimitConfig struct {
	MaxEmailAttempts int           // failed logins per email
	EmailWindow      time.Duration // window for the email limit
	MaxIPAttempts    int           // failed logins per client IP
	IPWindow         time.Duration // window for the IP limit
}

// DefaultRateLimitConfig returns the default login throttling limits
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEmailAttempts: 5,
		EmailWindow:      15 * time.Minute,
		MaxIPAttempts:    20,
		IPWindow:         time.Hour,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RateLimitService throttles local logins by counting recent failures
type RateLimitService struct {
	store  LoginAttemptStore
	config RateLimitConfig
	logger *logrus.Logger
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(store LoginAttemptStore, config RateLimitConfig, logger *logrus.Logger) *RateLimitService {
	defaults := DefaultRateLimitConfig()
	if config.MaxEmailAttempts <= 0 {
		config.MaxEmailAttempts = defaults.MaxEmailAttempts
	}
	if config.EmailWindow <= 0 {
		config.EmailWindow = defaults.EmailWindow
	}
	if config.MaxIPAttempts <= 0 {
		config.MaxIPAttempts = defaults.MaxIPAttempts
	}
	if config.IPWindow <= 0 {
		config.IPWindow = defaults.IPWindow
	}
	return &RateLimitService{store: store, config: config, logger: logger}
}

// CheckLogin returns a *RateLimitError when the email or IP has too many recent failures
func (s *RateLimitService) CheckLogin(ctx context.Context, email, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if email != "" {
		if err := s.check(ctx, email, identifierEmail, s.config.MaxEmailAttempts, s.config.EmailWindow,
			"Too many failed login attempts for this account"); err != nil {
			return err
		}
	}
	if ip != "" {
		if err := s.check(ctx, ip, identifierIP, s.config.MaxIPAttempts, s.config.IPWindow,
			"Too many failed login attempts from this IP address"); err != nil {
			return err
		}
	}
	return nil
}

func (s *RateLimitService) check(ctx context.Context, identifier, identifierType string, limit int, window time.Duration, message string) error {
	count, last, err := s.store.CountSince(ctx, identifier, identifierType, time.Now().Add(-window))
	if err != nil {
		return &PersistenceError{Op: "check " + identifierType + " rate limit", Err: err}
	}
	if count < limit {
		return nil
	}

	retryAfter := last.Add(window)
	s.logger.WithFields(logrus.Fields{
		"type":        identifierType,
		"attempts":    count,
		"retry_after": retryAfter,
	}).Warn("Login rate limit exceeded")

	return &RateLimitError{
		Message:    fmt.Sprintf("%s. Please try again after %s", message, retryAfter.Format("15:04:05")),
		RetryAfter: retryAfter,
		Type:       identifierType,
	}
}

// RecordFailure counts one failed login against the email and the IP
func (s *RateLimitService) RecordFailure(ctx context.Context, email, ip string) {
	email = strings.ToLower(strings.TrimSpace(email))
	ctx = context.WithoutCancel(ctx)

	if email != "" {
		if err := s.store.Record(ctx, email, identifierEmail); err != nil {
			s.logger.WithError(err).Warn("Failed to record login attempt")
		}
	}
	if ip != "" {
		if err := s.store.Record(ctx, ip, identifierIP); err != nil {
			s.logger.WithError(err).Warn("Failed to record login attempt")
		}
	}
}

// Cleanup removes attempts older than the longest window
func (s *RateLimitService) Cleanup(ctx context.Context) (int64, error) {
	window := s.config.IPWindow
	if s.config.EmailWindow > window {
		window = s.config.EmailWindow
	}

	deleted, err := s.store.DeleteBefore(ctx, time.Now().Add(-window))
	if err != nil {
		return 0, &PersistenceError{Op: "clean up login attempts", Err: err}
	}
	return deleted, nil
}
