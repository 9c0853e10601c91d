// Package students declares the server-side repository contract for the
// student records store.
package students

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Repository defines CRUD operations on the students table.
type Repository interface {
	// Create inserts a new record and fills in the generated ID.
	Create(ctx context.Context, student *models.Student) (*models.Student, error)

	// Get returns a record by ID or common.ErrorNotFound.
	Get(ctx context.Context, id int64) (*models.Student, error)

	// List returns all records ordered by ID.
	List(ctx context.Context) ([]*models.Student, error)

	// Update rewrites a record in full. Returns common.ErrorNotFound if the
	// row is absent.
	Update(ctx context.Context, student *models.Student) error

	// Delete removes a record by ID or returns common.ErrorNotFound.
	Delete(ctx context.Context, id int64) error

	// DeleteByIDs removes every record whose ID is in ids and reports how
	// many rows went away. Missing IDs are skipped silently.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}
