// Package account provides the API handlers of the logged-in user.
package account

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the base path of the account endpoints.
const Path = "/me"

// Me describes the logged-in user and what it may do.
type Me struct {
	*auth.UserDetail
	Permissions  []string `json:"permissions"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	IsAdmin      bool     `json:"is_admin"`
	TierLevel    int      `json:"tier_level"`
}

// PasswordBody is the body of PUT /me/password.
type PasswordBody struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// Service provides the account endpoints.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
	local       *auth.LocalProvider
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error {
	if router == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilFatalLogMsg)
	}

	s.cfg = cfg
	s.authService = authService
	s.local = authService.Local()

	router.Get(Path, auth.Authenticated(), s.Get)
	router.Put(Path+"/password", auth.Authenticated(), s.ChangePassword)

	return nil
}

// Get returns the caller with roles and effective permissions.
func (s *Service) Get(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	detail, err := s.authService.GetUser(c.Context(), sub, sub.ID())
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, Me{
		UserDetail:   detail,
		Permissions:  sub.PermissionNames(),
		IsSuperAdmin: sub.IsSuperAdmin(),
		IsAdmin:      sub.IsAdmin(),
		TierLevel:    sub.TierLevel(),
	})
}

// ChangePassword replaces the caller's password.
func (s *Service) ChangePassword(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	var in PasswordBody
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	err = s.local.ChangePassword(c.Context(), sub.ID(), in.OldPassword, in.NewPassword)
	if errors.Is(err, auth.ErrInvalidOldPassword) {
		return errs.Invalid("old_password", err.Error())
	}

	if err != nil {
		return err
	}

	log.Info().Uint("user_id", sub.ID()).Msg("password changed")

	return handler.OK(c, fiber.StatusOK, nil)
}
