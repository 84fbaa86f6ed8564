// Package server wires the filevault server together: entity store, blob
// store, credential service, orchestrators and the HTTP and gRPC transports.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/api"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/ratelimit"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/dmitrijs2005/filevault/internal/server/storage"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/filevault/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	httpServer *http.Server
	grpcServer *gs.GRPCServer
	closers    []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger, closers: []io.Closer{logCloser}}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	repos, err := repomanager.New(ctx, repomanager.Options{
		Type:       c.Database.Type,
		DSN:        c.Database.DSN,
		BadgerPath: c.Database.BadgerPath,
	})
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.repos = repos
	app.closers = append(app.closers, repos)

	if err := repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := storage.NewFromConfig(ctx, c.Blob)
	if err != nil {
		return fmt.Errorf("blob store init error: %w", err)
	}

	users := services.NewUserService(repos, auth.NewPasswordHasher(), auth.NewTokenManager(c.Auth.SecretKey), app.logger)
	files := services.NewFileService(repos, blobs, app.logger)
	folders := services.NewFolderService(repos, files, app.logger, c.Folders.MaxDepth)

	var limiter *ratelimit.Limiter
	if c.RateLimit.Enabled {
		counter := ratelimit.NewRedisCounter(ratelimit.NewRedisClient(c.RateLimit))
		app.closers = append(app.closers, counter)
		limiter = ratelimit.New(counter, c.RateLimit.Requests, c.RateLimit.Window, app.logger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Options{
		Users:          users,
		Files:          files,
		Folders:        folders,
		Health:         repos,
		Logger:         app.logger,
		MaxUploadBytes: c.Server.MaxUploadBytes,
		Limiter:        limiter,
	})
	app.httpServer = &http.Server{Addr: c.Server.HTTPAddr, Handler: router}
	app.grpcServer = gs.NewGRPCServer(c.Server.GRPCAddr, app.logger, repos, gs.DefaultCheckInterval)

	return nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting HTTP server", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) stopHTTPServer(ctx context.Context) {
	<-ctx.Done()
	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout)
	defer cancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// server fails, then releases every resource.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.stopHTTPServer(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
}

// close releases resources in reverse order of acquisition.
func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error(ctx, "close error", "error", err)
		}
	}
	app.closers = nil
}
