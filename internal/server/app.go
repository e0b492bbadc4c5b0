// Package server initializes and runs the Instant Branding API server. It
// opens PostgreSQL and Redis, applies migrations, wires the services and
// serves HTTP until SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/assets"
	"github.com/instantbranding/brandkit/internal/server/bgremove"
	"github.com/instantbranding/brandkit/internal/server/billing"
	"github.com/instantbranding/brandkit/internal/server/config"
	"github.com/instantbranding/brandkit/internal/server/copygen"
	"github.com/instantbranding/brandkit/internal/server/httpapi"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
	"github.com/instantbranding/brandkit/internal/server/services"
	"github.com/instantbranding/brandkit/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	presigners, err := newPresigners(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var cache assets.Cache
	var rdb *redis.Client
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn(ctx, "redis unavailable, asset cache degraded", "addr", c.RedisAddr, "error", err)
		}
		cancel()
		cache = assets.NewRedisCache(rdb)
	}

	svc := httpapi.Services{
		Brands:  services.NewBrandService(db, rm, logger),
		Designs: services.NewDesignService(db, rm, logger),
		Posts: services.NewPostService(db, rm, copygen.NewGenerator(copygen.Config{
			APIKey:  c.OpenAIKey,
			Model:   c.OpenAIModel,
			BaseURL: c.OpenAIBaseURL,
			Timeout: c.OpenAITimeout,
		}, logger), logger),
		Users:   services.NewUserService(db, rm),
		Uploads: services.NewUploadService(presigners, c.UploadURLExpiry, logger),
		Background: bgremove.NewClient(bgremove.Config{
			URL:     c.BgRemovalURL,
			APIKey:  c.BgRemovalKey,
			Timeout: c.BgRemovalTimeout,
		}, logger),
		Billing: services.NewBillingService(db, rm,
			billing.NewVerifier(c.PaddleWebhookSecret, c.PaddleTolerance), c.PaddlePricePlans, logger),
		Assets: assets.NewProxy(assets.Config{
			BaseURL:  c.AssetBaseURL,
			CacheTTL: c.AssetCacheTTL,
			Timeout:  c.AssetTimeout,
		}, cache, logger),
		Drafts: services.NewDraftImportService(db, rm, logger),
	}

	router := httpapi.NewRouter(httpapi.Config{
		JWTSecret:   []byte(c.JWTSecret),
		CORSOrigins: c.CORSOrigins,
	}, svc, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		redis:  rdb,
		server: NewHTTPServer(c.HTTPAddr, router, c.ShutdownTimeout, logger),
	}, nil
}

// newPresigners builds the S3 presigner and, when an account id is
// configured, the R2 one.
func newPresigners(ctx context.Context, c *config.Config) (map[string]storage.Presigner, error) {
	out := map[string]storage.Presigner{}

	s3p, err := storage.NewS3Presigner(ctx, storage.S3Config{
		Endpoint:      c.S3Endpoint,
		Region:        c.S3Region,
		Bucket:        c.S3Bucket,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		PublicBaseURL: c.S3PublicBaseURL,
		PathStyle:     c.S3Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("s3 presigner: %w", err)
	}
	out[storage.ProviderS3] = s3p

	if c.R2AccountID != "" {
		r2p, err := storage.NewR2Presigner(ctx, c.R2AccountID, c.R2Bucket, c.R2AccessKey, c.R2SecretKey, c.R2PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("r2 presigner: %w", err)
		}
		out[storage.ProviderR2] = r2p
	}
	return out, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
