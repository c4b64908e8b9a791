// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
)

// sqlitePragmas enables foreign keys so join rows cascade with their parents.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Create builds the Data Source Name for the configured engine.
func Create(dbCfg *config.Config) string {
	switch dbCfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres(&dbCfg.DB)
	case config.EngineSQLite:
		return sqlite(&dbCfg.DB)
	default:
		return mysql(&dbCfg.DB)
	}
}

func mysql(db *config.DB) string {
	extras := db.Extras
	if extras == "" {
		extras = "charset=utf8mb4&parseTime=True&loc=UTC"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		extras,
	)
}

func postgres(db *config.DB) string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	if u.RawQuery == "" {
		u.RawQuery = "sslmode=disable"
	}

	return u.String()
}

func sqlite(db *config.DB) string {
	path := db.Path
	if path == "" {
		path = "ekklesia.db"
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	out := path + sep + sqlitePragmas
	if db.Extras != "" {
		out += "&" + db.Extras
	}

	return out
}
