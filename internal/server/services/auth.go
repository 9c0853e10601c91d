// Package services contains server-side business logic. This file implements
// AuthService: registration, login, and the full lifecycle of opaque token
// pairs (issue, validate, rotate, revoke).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenBytes  = 32
	refreshTokenBytes = 48
)

// AuthService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials and issue a token pair
//   - ValidateAccess: resolve an access token to its owner
//   - Refresh: rotate a token pair in place
//   - Logout: revoke the current pair
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password. A taken username
// yields common.ErrorLoginAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, password string, readonly bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		UserName:     username,
		PasswordHash: string(hash),
		IsReadonly:   readonly,
		IsActive:     true,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorLoginAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and, on success, issues a fresh token pair.
// Issuing deactivates every previously active pair of the user inside the
// same transaction, so at most one session is ever active.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidLoginPassword
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorInvalidLoginPassword
	}

	var pair *models.TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var issueErr error
		pair, issueErr = s.issue(ctx, user.ID, tx)
		return issueErr
	}); err != nil {
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// ValidateAccess resolves an access token string to its owning user. It fails
// with common.ErrorUnauthorized when the token is unknown, inactive, expired,
// or the owner is deactivated. Expiry never slides: validation does not touch
// the stored timestamps.
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*models.User, error) {
	tokenRepo := s.repomanager.Tokens(s.db)
	pair, err := tokenRepo.FindActiveByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	// one clock read per validation
	now := time.Now()
	if pair.AccessExpiresAt.Before(now) {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, pair.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Refresh rotates the pair carrying this refresh token: both token strings
// and both expiries are rewritten on the same row inside one transaction, so
// the old refresh token stops matching the moment the rotation commits.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var rotated *models.TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokenRepo := s.repomanager.Tokens(tx)
		pair, err := tokenRepo.FindActiveByRefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}

		now := time.Now()
		if pair.RefreshExpiresAt.Before(now) {
			return common.ErrorUnauthorized
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, pair.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}
		if !user.IsActive {
			return common.ErrorUnauthorized
		}

		access, refresh, err := s.generateTokenStrings()
		if err != nil {
			return err
		}
		pair.AccessToken = access
		pair.RefreshToken = refresh
		pair.AccessExpiresAt = now.Add(s.accessTokenValidityDuration)
		pair.RefreshExpiresAt = now.Add(s.refreshTokenValidityDuration)

		if err := tokenRepo.Rotate(ctx, pair); err != nil {
			return err
		}
		rotated = pair
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return rotated, nil
}

// Logout revokes the pair carrying this access token. Revocation is
// idempotent at the storage level; a token that is already gone or inactive
// still reports ErrorUnauthorized to the caller, since the session it names
// no longer exists.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	tokenRepo := s.repomanager.Tokens(s.db)
	pair, err := tokenRepo.FindActiveByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}
	if err := tokenRepo.Deactivate(ctx, pair.ID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// RequireWrite rejects read-only principals. Exactly two capability levels
// exist: read and read+write.
func (s *AuthService) RequireWrite(user *models.User) error {
	if user.IsReadonly {
		return common.ErrorForbidden
	}
	return nil
}

// --- helpers below ---

func (s *AuthService) generateTokenStrings() (access string, refresh string, err error) {
	access, err = common.MakeRandHexString(accessTokenBytes)
	if err != nil {
		return "", "", err
	}
	refresh, err = common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// issue deactivates all active pairs of the user and inserts a new one.
// Must run inside a transaction: two concurrent logins must not both end up
// with active pairs.
func (s *AuthService) issue(ctx context.Context, userID string, tx dbx.DBTX) (*models.TokenPair, error) {
	tokenRepo := s.repomanager.Tokens(tx)

	if err := tokenRepo.DeactivateAllForUser(ctx, userID); err != nil {
		return nil, err
	}

	access, refresh, err := s.generateTokenStrings()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pair := &models.TokenPair{
		UserID:           userID,
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.accessTokenValidityDuration),
		RefreshExpiresAt: now.Add(s.refreshTokenValidityDuration),
		IsActive:         true,
	}
	return tokenRepo.Insert(ctx, pair)
}
