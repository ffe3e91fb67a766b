package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/opensangha/memberhub/internal/http"
	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/internal/store/sqlite"
	"github.com/opensangha/memberhub/pkg/blob"
	"github.com/opensangha/memberhub/pkg/cryptox"
	"github.com/opensangha/memberhub/pkg/jwtx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec jwtx.Codec
	blobs blob.Store

	authService       *service.AuthService
	inviteService     *service.InviteService
	userService       *service.UserService
	mfaService        *service.MFAService
	unitService       *service.UnitService
	mentorshipService *service.MentorshipService
	uploadService     *service.UploadService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "memberhub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCodec(); err != nil {
		return nil, err
	}
	if err := app.initBlobs(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("memberhub starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down memberhub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("memberhub stopped")
	return nil
}

// initDatabase opens the sqlite store and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCodec builds the JWT signer/verifier from config.
func (app *Application) initCodec() error {
	switch app.cfg.TokenAlgorithm {
	case "HS256":
		secret := app.cfg.TokenSecret
		if secret == "" {
			secret = cryptox.MustGenerateToken(cryptox.TokenSize256)
			app.logger.Warn("no token secret configured; tokens will not survive a restart")
		}
		codec, err := jwtx.NewHS256([]byte(secret), app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to initialize HS256 codec: %w", err)
		}
		app.codec = codec

	case "EdDSA":
		if app.cfg.TokenKeyFile == "" {
			codec, err := jwtx.NewEdDSA(app.cfg.Issuer)
			if err != nil {
				return fmt.Errorf("failed to generate Ed25519 key: %w", err)
			}
			app.logger.Warn("no token key file configured; tokens will not survive a restart")
			app.codec = codec
			return nil
		}
		pemKey, err := os.ReadFile(app.cfg.TokenKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read token key file: %w", err)
		}
		codec, err := jwtx.NewEdDSAFromPEM(pemKey, app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to parse token key file: %w", err)
		}
		app.codec = codec

	default:
		return fmt.Errorf("unsupported token algorithm %q (want HS256 or EdDSA)", app.cfg.TokenAlgorithm)
	}
	return nil
}

// initBlobs sets up the filesystem blob store for uploads.
func (app *Application) initBlobs() error {
	signKey := app.cfg.BlobSignKey
	if signKey == "" {
		signKey = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("no blob signing key configured; download links will not survive a restart")
	}

	blobs, err := blob.NewFSStore(app.cfg.BlobDir, []byte(signKey))
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}
	app.blobs = blobs
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:         app.db,
		Codec:         app.codec,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     jwtx.DefaultAccessTokenTTL,
		RefreshLeeway: jwtx.DefaultRefreshLeeway,
	}

	app.inviteService = &service.InviteService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.unitService = &service.UnitService{Store: app.db}
	app.mentorshipService = &service.MentorshipService{Store: app.db}
	app.uploadService = &service.UploadService{
		Store:    app.db,
		Blobs:    app.blobs,
		MaxBytes: app.cfg.MaxUploadBytes,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.blobs,
		app.logger,
	)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.UnitService = app.unitService
	router.MentorshipService = app.mentorshipService
	router.UploadService = app.uploadService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
