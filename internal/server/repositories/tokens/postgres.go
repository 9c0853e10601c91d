package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements token pair storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Insert(ctx context.Context, pair *models.TokenPair) (*models.TokenPair, error) {
	query := `
		INSERT INTO tokens (user_id, access_token, refresh_token, access_expires_at, refresh_expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		pair.UserID, pair.AccessToken, pair.RefreshToken,
		pair.AccessExpiresAt, pair.RefreshExpiresAt, pair.IsActive).Scan(&pair.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pair, nil
}

func (r *PostgresRepository) findActive(ctx context.Context, column string, token string) (*models.TokenPair, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, access_token, refresh_token, access_expires_at, refresh_expires_at, is_active
		FROM tokens
		WHERE %s = $1 AND is_active
	`, column)
	pair := &models.TokenPair{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&pair.ID, &pair.UserID, &pair.AccessToken, &pair.RefreshToken,
		&pair.AccessExpiresAt, &pair.RefreshExpiresAt, &pair.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pair, nil
}

func (r *PostgresRepository) FindActiveByAccessToken(ctx context.Context, token string) (*models.TokenPair, error) {
	return r.findActive(ctx, "access_token", token)
}

func (r *PostgresRepository) FindActiveByRefreshToken(ctx context.Context, token string) (*models.TokenPair, error) {
	return r.findActive(ctx, "refresh_token", token)
}

func (r *PostgresRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	query := `
		UPDATE tokens SET is_active = false
		WHERE user_id = $1 AND is_active
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Rotate(ctx context.Context, pair *models.TokenPair) error {
	query := `
		UPDATE tokens
		SET access_token = $2, refresh_token = $3, access_expires_at = $4, refresh_expires_at = $5
		WHERE id = $1 AND is_active
	`
	res, err := r.db.ExecContext(ctx, query,
		pair.ID, pair.AccessToken, pair.RefreshToken, pair.AccessExpiresAt, pair.RefreshExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
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

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE tokens SET is_active = false
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
