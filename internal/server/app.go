// Package server wires the account service together: configuration, the
// PostgreSQL store and its migrations, the S3 media store, the services and
// the HTTP server. It also owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/channelhub/internal/filex"
	"github.com/dmitrijs2005/channelhub/internal/logging"
	"github.com/dmitrijs2005/channelhub/internal/server/api"
	"github.com/dmitrijs2005/channelhub/internal/server/auth"
	"github.com/dmitrijs2005/channelhub/internal/server/config"
	"github.com/dmitrijs2005/channelhub/internal/server/media"
	"github.com/dmitrijs2005/channelhub/internal/server/metrics"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/channelhub/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	httpServer  *api.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewZerologLogger(c.LogLevel, os.Stdout)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("upload dir error: %w", err)
	}
	c.UploadDir = uploadDir

	store, err := media.NewS3Store(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("media store init error: %w", err)
	}

	tokens := auth.NewTokenService(c)
	us := services.NewUserService(db, rm, tokens, store, logger.With("module", "user_service"))
	cs := services.NewChannelService(db, rm)

	srv := api.NewServer(c, logger, us, cs, tokens, metrics.New(), db)

	return &App{config: c, logger: logger, db: db, userService: us, httpServer: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives or the server fails, then waits for
// pending media cleanups and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
	}

	app.logger.Info(ctx, "Waiting for background media cleanup...")
	app.userService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
