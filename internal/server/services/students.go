package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
)

const (
	studentsListKey    = "students:list"
	studentsItemKeyFmt = "students:%d"
	studentsKeyPattern = "students:*"
)

// Cache is the slice of the cache layer the student service needs.
type Cache interface {
	GetObject(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// StudentService provides CRUD over the record store with a read-through
// cache in front. Reads consult the cache first and repopulate on miss;
// writes invalidate the whole students keyspace. There is no synchronous
// cache update on write: the consistency model is eventual, bounded by the
// cache TTL.
type StudentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       Cache
	logger      logging.Logger
	cacheTTL    time.Duration
}

// NewStudentService constructs a StudentService.
func NewStudentService(db *sql.DB, m repomanager.RepositoryManager, c Cache, l logging.Logger, cfg *config.Config) *StudentService {
	return &StudentService{
		db:          db,
		repomanager: m,
		cache:       c,
		logger:      l.With("module", "students"),
		cacheTTL:    cfg.CacheTTL,
	}
}

// invalidateCache drops every students:* entry. A failed invalidation is
// logged and tolerated: the TTL bounds how long the stale entries survive.
func (s *StudentService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, studentsKeyPattern); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "error", err)
	}
}

// Create inserts a new record and invalidates the cache.
func (s *StudentService) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	repo := s.repomanager.Students(s.db)
	created, err := repo.Create(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("error creating student: %w", err)
	}
	s.invalidateCache(ctx)
	return created, nil
}

// Get returns one record, trying the cache first.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	key := fmt.Sprintf(studentsItemKeyFmt, id)

	cached := &models.Student{}
	if err := s.cache.GetObject(ctx, key, cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, common.ErrorCacheMiss) {
		s.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
	}

	student, err := s.repomanager.Students(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, student, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return student, nil
}

// List returns all records, trying the cache first.
func (s *StudentService) List(ctx context.Context) ([]*models.Student, error) {
	var cached []*models.Student
	if err := s.cache.GetObject(ctx, studentsListKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, common.ErrorCacheMiss) {
		s.logger.Warn(ctx, "cache read failed", "key", studentsListKey, "error", err)
	}

	list, err := s.repomanager.Students(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	if err := s.cache.Set(ctx, studentsListKey, list, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", "key", studentsListKey, "error", err)
	}
	return list, nil
}

// Update applies a partial patch to the record inside one transaction
// (read-merge-write) and invalidates the cache.
func (s *StudentService) Update(ctx context.Context, id int64, patch *models.StudentPatch) (*models.Student, error) {
	var updated *models.Student

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Students(tx)
		student, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(student)
		if err := repo.Update(ctx, student); err != nil {
			return err
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return updated, nil
}

// Delete removes one record and invalidates the cache.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Students(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// BulkDelete removes every record in ids and invalidates the cache. Intended
// to run as a background job; missing IDs are skipped, not errors.
func (s *StudentService) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.repomanager.Students(s.db).DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting students: %w", err)
	}
	s.invalidateCache(ctx)
	return n, nil
}

// ImportStudents inserts the already-parsed records in one transaction and
// invalidates the cache. Intended to run as a background job.
func (s *StudentService) ImportStudents(ctx context.Context, records []*models.Student) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Students(tx)
		for _, rec := range records {
			if _, err := repo.Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error importing students: %w", err)
	}

	s.invalidateCache(ctx)
	return len(records), nil
}
