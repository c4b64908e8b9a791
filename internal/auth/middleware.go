package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// LocalsSubject is the fiber.Locals key holding the request's *Subject.
const LocalsSubject = "subject"

// SubjectFrom returns the authenticated subject of the request, or nil.
func SubjectFrom(c fiber.Ctx) *Subject {
	sub, _ := c.Locals(LocalsSubject).(*Subject)

	return sub
}

// RequireSubject returns the authenticated subject or a 401 error.
func RequireSubject(c fiber.Ctx) (*Subject, error) {
	sub := SubjectFrom(c)
	if sub == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, ErrNoSubject.Error())
	}

	return sub, nil
}

// Authenticated creates Fiber middleware that only requires a logged-in user.
func Authenticated() fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := RequireSubject(c); err != nil {
			return err
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, name string) fiber.Handler {
	return func(c fiber.Ctx) error {
		sub, err := RequireSubject(c)
		if err != nil {
			return err
		}

		if !sub.Can(name) {
			log.Warn().Uint("user_id", sub.ID()).Str("permission", name).
				Msg("User lacks required permission")

			return authService.Deny(c.Context(), sub, c.Method()+" "+c.Route().Path, errs.MissingPermission(name))
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, names ...string) fiber.Handler {
	refs := permission.Refs(names...)

	return func(c fiber.Ctx) error {
		sub, err := RequireSubject(c)
		if err != nil {
			return err
		}

		if !sub.HasAnyPermission(refs...) {
			log.Warn().Uint("user_id", sub.ID()).Strs("permissions", names).
				Msg("User lacks required permissions")

			missing := ""
			if len(names) > 0 {
				missing = names[0]
			}

			return authService.Deny(c.Context(), sub, c.Method()+" "+c.Route().Path, errs.MissingPermission(missing))
		}

		return c.Next()
	}
}

// RequireAllPermissions creates Fiber middleware that requires all the given permissions.
func RequireAllPermissions(authService *Service, names ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		sub, err := RequireSubject(c)
		if err != nil {
			return err
		}

		if err = sub.Require(names...); err != nil {
			log.Warn().Uint("user_id", sub.ID()).Strs("permissions", names).
				Msg("User lacks required permissions")

			return authService.Deny(c.Context(), sub, c.Method()+" "+c.Route().Path, err)
		}

		return c.Next()
	}
}
