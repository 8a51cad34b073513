// Package daemon wires the database, the authorization service and the web service together.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campusdesk/campusdesk/internal/auth"
	"github.com/campusdesk/campusdesk/internal/authz"
	"github.com/campusdesk/campusdesk/internal/config"
	"github.com/campusdesk/campusdesk/internal/db/dsn"
	"github.com/campusdesk/campusdesk/internal/db/models"
	"github.com/campusdesk/campusdesk/internal/web"
	"github.com/campusdesk/campusdesk/internal/web/handler"
	"github.com/campusdesk/campusdesk/internal/web/session"
)

const defaultSessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	storage    fiber.Storage
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	go d.webService.WaitShutdown()

	err := <-errCh

	if cerr := d.storage.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("failed to close session storage")
	}

	return err
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// NewSessionStorage creates the session storage backend matching the gorm engine.
func NewSessionStorage(cfg *config.Config) fiber.Storage {
	table := cfg.Webserver.Session.Table
	if table == "" {
		table = defaultSessionTable
	}

	if cfg.DB.GormEngine == config.EnginePostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         table,
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.MySQL(cfg),
		Table:         table,
	})
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := authz.NewService(db, nil, authz.OptionsFromConfig(cfg.Authz))
	if err != nil {
		return nil, err
	}

	if err = Seed(context.Background(), cfg, db, svc); err != nil {
		return nil, err
	}

	users, err := auth.NewLocalProvider(db)
	if err != nil {
		return nil, err
	}

	storage := NewSessionStorage(cfg)

	sessions, err := session.NewManager(storage, cfg.Webserver.Session.ExpiryTime.Duration)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(&handler.Env{
		Config:   cfg,
		Authz:    svc,
		Users:    users,
		Sessions: sessions,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Int("port", cfg.Webserver.Port).Msg("daemon initialised")

	return &Daemon{cfg: cfg, webService: webService, storage: storage}, nil
}
