package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/instantbranding/brandkit/internal/client/api"
	"github.com/instantbranding/brandkit/internal/client/config"
	"github.com/instantbranding/brandkit/internal/client/drafts"
	"github.com/instantbranding/brandkit/internal/client/localdb"
	"github.com/instantbranding/brandkit/internal/client/migration"
	"github.com/instantbranding/brandkit/internal/client/repositories/metadata"
	"github.com/instantbranding/brandkit/internal/client/session"
	"github.com/instantbranding/brandkit/internal/filex"
	"github.com/instantbranding/brandkit/internal/logging"
)

var _ migration.Notifier = (*App)(nil)

type App struct {
	config    *config.Config
	db        *sql.DB
	api       *api.Client
	drafts    *drafts.Store
	sessions  *session.Store
	migration *migration.Workflow
	log       logging.Logger
	out       io.Writer
}

// NewApp opens the local database and wires the stores, the API client and
// the migration workflow.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewJSONLogger(os.Stderr, c.LogLevel)

	dsn, err := filex.DataFile(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := localdb.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("init local database: %w", err)
	}

	a := newApp(c, db, api.NewClient(c.APIBaseURL, c.RequestTimeout), log, os.Stdout)
	return a, nil
}

func newApp(c *config.Config, db *sql.DB, client *api.Client, log logging.Logger, out io.Writer) *App {
	repo := metadata.NewSQLiteRepository(db)

	a := &App{
		config:   c,
		db:       db,
		api:      client,
		drafts:   drafts.NewStore(repo, log),
		sessions: session.NewStore(repo, log),
		log:      log.With("module", "cli"),
		out:      out,
	}
	a.migration = migration.NewWorkflow(a.sessions, a.drafts, func(token string) migration.Importer {
		return client.WithToken(token)
	}, a, log)
	return a
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close local database", "error", err)
		}
	}
}

func (a *App) isSignedIn() bool {
	return a.sessions.Token(context.Background()) != ""
}

// authed returns an API client carrying the stored token.
func (a *App) authed(ctx context.Context) *api.Client {
	return a.api.WithToken(a.sessions.Token(ctx))
}

func (a *App) MigrationSucceeded(_ context.Context, res *api.ImportResult) {
	name, _ := res.Brand["name"].(string)
	fmt.Fprintf(a.out, "Your draft brand %q was saved to your account (%d designs).\n", name, len(res.Designs))
}

func (a *App) MigrationFailed(_ context.Context, err error) {
	fmt.Fprintf(a.out, "Could not move your draft into your account: %v\n", err)
}
