package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// PostgresRepository implements student storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	query := `
		INSERT INTO students (last_name, first_name, faculty, course, grade)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		student.LastName, student.FirstName, student.Faculty, student.Course, student.Grade).Scan(&student.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return student, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT id, last_name, first_name, faculty, course, grade FROM students
		WHERE id = $1
	`
	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID, &student.LastName, &student.FirstName, &student.Faculty, &student.Course, &student.Grade)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return student, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Student, error) {
	query := `
		SELECT id, last_name, first_name, faculty, course, grade FROM students
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Student
	for rows.Next() {
		var item models.Student
		if err := rows.Scan(&item.ID, &item.LastName, &item.FirstName, &item.Faculty, &item.Course, &item.Grade); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET last_name = $2, first_name = $3, faculty = $4, course = $5, grade = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		student.ID, student.LastName, student.FirstName, student.Faculty, student.Course, student.Grade)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM students
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// pgx (stdlib mode) maps []int64 onto a Postgres array for ANY.
	query := `
		DELETE FROM students
		WHERE id = ANY($1)
	`
	res, err := r.db.ExecContext(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
