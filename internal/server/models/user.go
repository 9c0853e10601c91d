// Package models holds the server-side persistence models.
package models

type User struct {
	ID           string
	UserName     string
	PasswordHash string
	IsReadonly   bool
	IsActive     bool
}
