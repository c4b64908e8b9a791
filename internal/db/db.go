// Package db opens the GORM connection for the configured engine and migrates the schema.
package db

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dsn"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	gormlog "github.com/franklininnocent/EkklesiaSoftApi/internal/logger/adapter/gorm"
)

// ErrConfigNil is returned when Open is called without configuration.
var ErrConfigNil = errors.New("db: config is nil")

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	source := dsn.Create(cfg)

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return gormmysql.Open(source), nil
	case config.EnginePostgres:
		return gormpostgres.Open(source), nil
	case config.EngineSQLite, "":
		return sqlite.Open(source), nil
	default:
		return nil, errors.Wrapf(config.ErrUnknownGormEngine, "engine %q", cfg.DB.GormEngine)
	}
}

// Open connects to the configured database.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlog.New(cfg.DevMode),
		DisableForeignKeyConstraintWhenMigrating: false,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", cfg.DB.GormEngine)
	}

	if cfg.DB.GormEngine == config.EngineSQLite || cfg.DB.GormEngine == "" {
		// sqlite allows a single writer; serialise through one connection.
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, errors.Wrap(errDB, "failed to get sql.DB")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database connected")

	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
