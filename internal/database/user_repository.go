package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehotel/hotel-backend/internal/models"
)

const userColumns = `id, email, name, role, phone_number, password_hash, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, email, name, role, phone_number, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Name,
		user.Role,
		user.PhoneNumber,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts a user keyed by an external identity uid. Nothing is
// written when the id or the (non-empty) email is already taken; the result
// reports whether the row was inserted.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, name, role, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Name,
		user.Role,
		user.PhoneNumber,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to provision user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetRole changes a user's role, matched by id or email
func (r *UserRepository) SetRole(ctx context.Context, idOrEmail string, role models.UserRole) (*models.User, error) {
	if strings.TrimSpace(idOrEmail) == "" {
		return nil, ErrNotFound
	}
	var user models.User
	query := `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1 OR email = LOWER($1)
		RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, &user, query, idOrEmail, role); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
