// Package users declares the server-side repository contract for user
// accounts in persistent storage.
package users

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Repository defines operations on the users table.
type Repository interface {
	// Create inserts a new user. If the username is already taken it returns
	// common.ErrorLoginAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUserName looks up a user by the unique username.
	// Returns common.ErrorNotFound when absent.
	GetByUserName(ctx context.Context, userName string) (*models.User, error)

	// GetByID looks up a user by primary key.
	// Returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetActive flips the is_active flag. Users are never hard-deleted here;
	// deactivation is the administrative off switch.
	SetActive(ctx context.Context, id string, active bool) error
}
