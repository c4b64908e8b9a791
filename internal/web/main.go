// Package web serves the JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	accesslog "github.com/franklininnocent/EkklesiaSoftApi/internal/logger/adapter/fiber"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/onboarding"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/validate"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/account"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/admin/audit"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/admin/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/admin/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/admin/tenant"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/admin/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/login"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler/logout"
	authmw "github.com/franklininnocent/EkklesiaSoftApi/internal/web/middleware/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/session"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// New creates the web service with every API route registered.
func New(cfg *config.Config, authService *auth.Service, sessions *session.Manager) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if authService == nil || sessions == nil {
		return nil, errors.New("auth service and sessions cannot be nil")
	}

	v := validate.New()

	app := fiber.New(
		fiber.Config{
			AppName:         cfg.Title,
			CaseSensitive:   true,
			Immutable:       true,
			ErrorHandler:    handler.ErrorHandler,
			StructValidator: v,
		},
	)

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	s := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	s.alive.Store(true)

	app.Get(CheckAlivePath, s.checkAlive)

	if cfg.Webserver.MetricsEnabled {
		app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group(handler.APIPrefix, authmw.New(sessions, authService))

	inits := []func() error{
		func() error { return login.Handler.Init(api, cfg, authService, sessions) },
		func() error { return logout.Handler.Init(api, sessions) },
		func() error { return account.Handler.Init(api, cfg, authService) },
		func() error { return permission.Handler.Init(api, cfg, authService) },
		func() error { return role.Handler.Init(api, cfg, authService) },
		func() error { return user.Handler.Init(api, cfg, authService) },
		func() error {
			return tenant.Handler.Init(api, cfg, authService, onboarding.NewService(authService, v))
		},
		func() error { return audit.Handler.Init(api, cfg, authService) },
	}

	for _, initHandler := range inits {
		if err := initHandler(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Service) checkAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// Start listens on addr until Shutdown is called.
func (s *Service) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("starting http server")

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops the server gracefully. Outside dev mode /checkalive answers 503 for
// ShutDownTime seconds first, so load balancers can take the instance out of rotation.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.fastShutDown && s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)

		select {
		case <-time.After(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second):
		case <-ctx.Done():
		}
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.ShutdownWithContext(ctx); err != nil {
		return err
	}

	log.Info().Msg("http server was stopped ... good bye...")

	return nil
}
