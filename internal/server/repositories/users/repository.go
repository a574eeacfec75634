// Package users is the user store: lookups by username, email or either,
// and a single save operation that inserts new records and updates existing
// ones. Both implementations enforce username and email uniqueness
// themselves and report violations as conflict errors.
package users

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// Repository returns common.ErrorNotFound from the Find methods when no
// record matches.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailOrUsername matches identifier against either column. When two
	// different records match, the one with the lowest id is returned.
	FindByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error)
	// Save inserts a user with a zero ID, assigning ID and both timestamps,
	// or updates full name and password hash of an existing one, keeping its
	// ID and CreatedAt.
	Save(ctx context.Context, user *models.User) (*models.User, error)
}
