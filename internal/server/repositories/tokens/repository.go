// Package tokens declares the server-side repository contract for issued
// token pairs in persistent storage.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Repository defines operations on the tokens table. One row is one session;
// rotation rewrites token strings and expiries in place.
type Repository interface {
	// Insert stores a new token pair. Duplicate token strings hit the unique
	// indexes and return common.ErrorAlreadyExists instead of overwriting.
	Insert(ctx context.Context, pair *models.TokenPair) (*models.TokenPair, error)

	// FindActiveByAccessToken returns the active pair carrying this access
	// token, or common.ErrorNotFound. Expiry is not checked here; the caller
	// compares against its own clock read.
	FindActiveByAccessToken(ctx context.Context, token string) (*models.TokenPair, error)

	// FindActiveByRefreshToken returns the active pair carrying this refresh
	// token, or common.ErrorNotFound.
	FindActiveByRefreshToken(ctx context.Context, token string) (*models.TokenPair, error)

	// DeactivateAllForUser marks every active pair of the user inactive.
	// Zero affected rows is not an error.
	DeactivateAllForUser(ctx context.Context, userID string) error

	// Rotate replaces both token strings and both expiries of the row in
	// place. Returns common.ErrorNotFound if the row vanished.
	Rotate(ctx context.Context, pair *models.TokenPair) error

	// Deactivate marks a single pair inactive. Idempotent: deactivating an
	// already-inactive pair is a no-op.
	Deactivate(ctx context.Context, id string) error
}
