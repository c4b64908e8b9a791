// Package logout provides the API handler ending a session.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/session"
)

// Path is the path of the logout route.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	sessions *session.Manager
}

// Handler is the logout handler.
var Handler = Service{}

// Init registers the logout route.
func (s *Service) Init(router fiber.Router, sessions *session.Manager) error {
	if router == nil || sessions == nil {
		return errors.New(handler.ErrNilFatalLogMsg)
	}

	s.sessions = sessions

	router.Post(Path, s.Logout)

	return nil
}

// Logout deletes the session and clears the cookie.
func (s *Service) Logout(c fiber.Ctx) error {
	if sub := auth.SubjectFrom(c); sub != nil {
		log.Info().Uint("user_id", sub.ID()).Msg("user logged out")
	}

	if err := s.sessions.Destroy(c); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	return handler.OK(c, fiber.StatusOK, nil)
}
