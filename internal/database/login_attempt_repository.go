package database

import (
	"context"
	"fmt"
	"time"
)

// LoginAttemptRepository records failed logins for throttling
type LoginAttemptRepository struct {
	db DB
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

type attemptWindow struct {
	Count int       `db:"count"`
	Last  time.Time `db:"last"`
}

// CountSince returns the number of attempts for identifier after since and
// the time of the most recent one
func (r *LoginAttemptRepository) CountSince(ctx context.Context, identifier, identifierType string, since time.Time) (int, time.Time, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(MAX(created_at), NOW()) AS last
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`
	var window attemptWindow
	if err := r.db.GetContext(ctx, &window, query, identifier, identifierType, since); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count login attempts: %w", err)
	}
	return window.Count, window.Last, nil
}

// Record stores one attempt
func (r *LoginAttemptRepository) Record(ctx context.Context, identifier, identifierType string) error {
	query := `
		INSERT INTO login_attempts (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query, identifier, identifierType); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// DeleteBefore removes attempts older than cutoff
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up login attempts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
