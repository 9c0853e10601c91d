package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/students"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Students(db dbx.DBTX) students.Repository
}
