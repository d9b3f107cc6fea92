package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/channelhub/internal/dbx"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
}
