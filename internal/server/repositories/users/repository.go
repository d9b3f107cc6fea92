// Package users declares the user repository contract and its PostgreSQL
// implementation. The repository owns password hashing: plaintext passwords
// go in on Create and UpdatePassword and only bcrypt hashes are stored.
package users

import (
	"context"

	"github.com/dmitrijs2005/channelhub/internal/server/models"
)

// Repository defines persistence operations over user records.
// Lookups return common.ErrorNotFound when no row matches; writes that hit
// the username or email unique index return common.ErrorAlreadyExists.
type Repository interface {
	// Create hashes user.Password, inserts the record and returns it with
	// the generated id and timestamps filled in.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID loads a user by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUserName loads a user by its (lowercase) username.
	GetByUserName(ctx context.Context, username string) (*models.User, error)

	// FindByEmailOrUserName loads the first user whose email equals email or
	// whose username equals username. Empty arguments never match.
	FindByEmailOrUserName(ctx context.Context, email, username string) (*models.User, error)

	// UpdateAccountDetails sets full name and email and returns the new record.
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error)

	// UpdateAvatar replaces the avatar URL.
	UpdateAvatar(ctx context.Context, id, url string) (*models.User, error)

	// UpdateCoverImage replaces the cover image URL.
	UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error)

	// SetRefreshToken stores token as the current refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, id string, token *string) error

	// UpdatePassword hashes and stores a new password.
	UpdatePassword(ctx context.Context, id, password string) error
}
