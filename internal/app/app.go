package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/securecookie"

	"github.com/acadshare/acadshare/internal/files"
	"github.com/acadshare/acadshare/internal/mail"
	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/internal/store/drivers/postgres"
	"github.com/acadshare/acadshare/internal/store/drivers/sqlite"
	"github.com/acadshare/acadshare/internal/web"
	"github.com/acadshare/acadshare/pkg/slogx"
	"github.com/acadshare/acadshare/pkg/tokenx"
)

// Application wires config, storage, services and the HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	storage files.Storage
	mailer  mail.Mailer

	userService  *service.UserService
	postService  *service.PostService
	resetService *service.ResetService

	server *http.Server
	router *web.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "acadshare",
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	secret, generated, err := sessionSecret(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	app.cfg.SecretKey = string(secret)
	if generated {
		app.logger.Warn("SECRET_KEY not set; sessions and reset links will not survive a restart")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initStorage(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// sessionSecret returns the configured secret, or generates one when none is
// set. GenerateRandomKey returns nil when the OS entropy source fails, which
// would leave cookies and reset tokens signed with an empty key, so that is a
// startup error rather than something to limp along with.
func sessionSecret(configured string) (secret []byte, generated bool, err error) {
	if configured != "" {
		return []byte(configured), false, nil
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, false, fmt.Errorf("app: generate session secret: no entropy available")
	}
	return key, true, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("acadshare starting",
		"port", app.cfg.Port,
		"store", app.cfg.StoreDriver,
		"files", app.cfg.FileBackend,
	)

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

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down...")

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

	app.logger.Info("acadshare stopped")
	return nil
}

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.PostgresDSN())
	case "sqlite":
		db, err = sqlite.NewStore(app.cfg.SQLiteDSN())
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initStorage() error {
	switch app.cfg.FileBackend {
	case "blob":
		app.storage = files.NewBlobStorage(app.db)
	case "disk":
		storage, err := files.NewDiskStorage(app.cfg.UploadDir)
		if err != nil {
			return fmt.Errorf("failed to initialize upload dir: %w", err)
		}
		app.storage = storage
	default:
		return fmt.Errorf("unknown file backend %q", app.cfg.FileBackend)
	}
	return nil
}

func (app *Application) initMailer() error {
	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = mailer
	return nil
}

func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.postService = &service.PostService{Store: app.db, Files: app.storage}
	app.resetService = &service.ResetService{
		Store: app.db,
		Users: app.userService,
		Tokens: &tokenx.ResetIssuer{
			Secret: []byte(app.cfg.SecretKey),
			Issuer: "acadshare",
			TTL:    tokenx.DefaultTTL,
		},
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
	}
}

func (app *Application) initHTTP() {
	sessions := web.NewSessions([]byte(app.cfg.SecretKey))

	app.router = web.NewRouter(
		sessions,
		app.userService,
		app.postService,
		app.resetService,
		app.cfg.MaxUploadBytes,
		app.logger,
	)

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
