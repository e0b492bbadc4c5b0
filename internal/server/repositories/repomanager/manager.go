package repomanager

import (
	"context"
	"database/sql"

	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/repositories/billing"
	"github.com/instantbranding/brandkit/internal/server/repositories/brands"
	"github.com/instantbranding/brandkit/internal/server/repositories/designs"
	"github.com/instantbranding/brandkit/internal/server/repositories/posts"
	"github.com/instantbranding/brandkit/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository types on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Brands(db dbx.DBTX) brands.Repository
	Designs(db dbx.DBTX) designs.Repository
	Posts(db dbx.DBTX) posts.Repository
	BillingEvents(db dbx.DBTX) billing.Repository
}
