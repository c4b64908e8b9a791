package auth

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	authz "github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/session"
)

// New returns a middleware loading the subject of the request's session into
// fiber.Locals. Requests without a valid session continue anonymously; the route
// guards reject them. Sessions of deleted or inactive users are destroyed.
func New(sessions *session.Manager, authService *authz.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := sessions.Read(c)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return c.Next()
		}

		sub, err := authService.Subject(c.Context(), data.UserID)

		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Info().Uint("user_id", data.UserID).Msg("session of deleted user dropped")

			_ = sessions.Destroy(c) //nolint:errcheck // best effort

			return c.Next()
		case err != nil:
			return err
		case !sub.User.Active:
			log.Info().Uint("user_id", data.UserID).Msg("session of inactive user dropped")

			_ = sessions.Destroy(c) //nolint:errcheck // best effort

			return c.Next()
		}

		c.Locals(authz.LocalsSubject, sub)

		return c.Next()
	}
}
