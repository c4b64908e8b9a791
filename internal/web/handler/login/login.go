package login

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/session"
)

// Path is the path of the login route.
const Path = "/login"

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	local    *auth.LocalProvider
	sessions *session.Manager
}

// Handler is the login handler.
var Handler = Service{}

// Init registers the login route.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service, sessions *session.Manager) error {
	if router == nil || cfg == nil || authService == nil || sessions == nil {
		return errors.New(handler.ErrNilFatalLogMsg)
	}

	s.cfg = cfg
	s.local = authService.Local()
	s.sessions = sessions

	router.Post(Path, s.Post)

	return nil
}

// Post checks the credentials and starts a session.
func (s *Service) Post(c fiber.Ctx) error {
	var in Credentials
	if err := handler.Parse(c, &in); err != nil {
		return err
	}

	u, err := s.local.Authenticate(c.Context(), in.Email, in.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		log.Info().Str("email", in.Email).Str("ip", c.IP()).Msg("login failed")

		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUserAccountDisabled):
		log.Info().Str("email", in.Email).Str("ip", c.IP()).Msg("login of disabled account")

		return fiber.NewError(fiber.StatusForbidden, ErrAccountDisabled.Error())
	case err != nil:
		return err
	}

	if err = s.sessions.Create(c, u.ID); err != nil {
		return err
	}

	log.Info().Uint("user_id", u.ID).Interface("tenant_id", u.TenantID).Msg("user logged in")

	return handler.OK(c, fiber.StatusOK, u)
}
