package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
)

// CreateUser stores an account. Emails are compared case-insensitively.
func CreateUser(ctx context.Context, db *sql.DB, email, fullName, passwordHash string) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (email, full_name, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, email, full_name, created_at`

	err := db.QueryRowContext(ctx, query, normalizeEmail(email), strings.TrimSpace(fullName), passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// UpdateUserFullName changes the display name and returns the updated user.
func UpdateUserFullName(ctx context.Context, db *sql.DB, id, fullName string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrUserNotFound
	}

	user := &models.User{}

	query := `
		UPDATE users
		SET full_name = $2
		WHERE id = $1
		RETURNING id, email, full_name, created_at`

	err := db.QueryRowContext(ctx, query, id, strings.TrimSpace(fullName)).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// GetUserCredentials returns the user together with its password hash.
func GetUserCredentials(ctx context.Context, db *sql.DB, email string) (*models.User, string, error) {
	user := &models.User{}
	var passwordHash string

	query := `
		SELECT id, email, full_name, created_at, password_hash
		FROM users
		WHERE email = $1`

	err := db.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
		&passwordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", database.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("get user credentials: %w", err)
	}

	return user, passwordHash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
