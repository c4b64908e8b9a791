// Package daemon wires the database, sessions, authorization and web service together.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dsn"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/session"
)

const (
	// sessionTable holds sessions of the mysql and postgres storage drivers.
	sessionTable = "http_sessions"

	sessionGCInterval = 10 * time.Minute

	// extra time granted to in-flight requests after the 503 window
	shutdownGrace = 10 * time.Second
)

// ErrConfigNil is returned when New gets no configuration.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	gormStore  *session.GormStorage
	closers    []io.Closer
}

// New connects and migrates the database, seeds the catalog and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, err
	}

	authService := auth.NewService(gdb)

	if err = Seed(context.Background(), authService, cfg); err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, db: gdb}

	storage, err := d.sessionStorage()
	if err != nil {
		return nil, err
	}

	sessions := session.New(storage, cfg.Webserver.Session.ExpiryTime, cfg.Webserver.Session.CookieSecure)

	if d.webService, err = web.New(cfg, authService, sessions); err != nil {
		return nil, err
	}

	return d, nil
}

// sessionStorage picks the gofiber storage driver matching the database engine.
// sqlite has no gofiber driver sharing its connection, so sessions go through GORM.
func (d *Daemon) sessionStorage() (session.Storage, error) {
	switch d.cfg.DB.GormEngine {
	case config.EngineMySQL:
		s := sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(d.cfg),
			Table:         sessionTable,
			GCInterval:    sessionGCInterval,
		})
		d.closers = append(d.closers, s)

		return s, nil
	case config.EnginePostgres:
		s := sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(d.cfg),
			Table:         sessionTable,
			GCInterval:    sessionGCInterval,
		})
		d.closers = append(d.closers, s)

		return s, nil
	case config.EngineSQLite, "":
		d.gormStore = session.NewGormStorage(d.db)

		return d.gormStore, nil
	default:
		return nil, fmt.Errorf("no session storage for engine %q: %w", d.cfg.DB.GormEngine, config.ErrUnknownGormEngine)
	}
}

// Start serves until ctx is cancelled, then shuts the web service down gracefully.
func (d *Daemon) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := time.Duration(d.cfg.Webserver.ShutDownTime)*time.Second + shutdownGrace

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return d.webService.Shutdown(shutdownCtx)
	})

	if d.gormStore != nil {
		g.Go(func() error {
			return d.gormStore.RunGC(gctx, sessionGCInterval)
		})
	}

	err := g.Wait()

	d.close()

	return err
}

func (d *Daemon) close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session storage")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
