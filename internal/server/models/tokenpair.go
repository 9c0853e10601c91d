package models

import "time"

// TokenPair is one issued session: an access/refresh token couple stored as a
// single row. Rotation rewrites the token strings and expiries in place, so
// the row identity survives a refresh.
type TokenPair struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	IsActive         bool
}
