package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/fernlabs/clientdash/internal/dash/http"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/internal/dash/store/drivers/memory"
	"github.com/fernlabs/clientdash/internal/dash/store/drivers/sqlite"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the dashboard service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	ledgerService       *service.LedgerService
	tokenService        *service.TokenService
	auditService        *service.AuditService
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "clientdash",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	// Seed the first admin account on an empty store
	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.authService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("dashboard service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down dashboard service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("dashboard service stopped")
	return nil
}

// initDatabase picks the configured storage driver and applies migrations.
func (app *Application) initDatabase() error {
	switch app.cfg.StoreDriver {
	case "memory":
		app.db = memory.NewStore()
		app.logger.Info("using in-memory store, data will not survive restarts")
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.ledgerService = &service.LedgerService{Store: app.db}

	app.tokenService = &service.TokenService{
		Store: app.db,
		TTL:   app.cfg.TokenTTL,
	}

	app.auditService = &service.AuditService{
		Store:     app.db,
		Retention: app.cfg.LogRetention,
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Secret:     []byte(app.cfg.JWTSecret),
		SessionTTL: app.cfg.SessionTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.auditService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService,
		app.cfg.AdminAPIKey,
		app.cfg.PublicBaseURL,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.LedgerService = app.ledgerService
	router.TokenService = app.tokenService
	router.AuditService = app.auditService
	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
