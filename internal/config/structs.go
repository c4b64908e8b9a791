package config

import (
	"time"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime   time.Duration
	CookieSecure bool // send the session cookie over https only
}

// Seed holds the bootstrap SuperAdmin account, created when the users table is empty.
type Seed struct {
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	MetricsEnabled bool    // expose /metrics
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
