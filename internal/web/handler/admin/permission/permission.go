// Package permission provides the API handlers of the permission catalog.
package permission

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the base path of the catalog.
const Path = "/permissions"

// Service provides the permission endpoints.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
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

	router.Get(Path, auth.RequirePermission(authService, auth.PermPermissionsView), s.List)
	router.Post(Path, auth.RequirePermission(authService, auth.PermPermissionsCreate), s.Create)
	router.Delete(Path+handler.IDPath, auth.RequirePermission(authService, auth.PermPermissionsDelete), s.Delete)

	return nil
}

// List returns the catalog visible to the caller.
func (s *Service) List(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	perms, err := s.authService.ListPermissions(c.Context(), sub)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, perms)
}

// Create registers a permission.
func (s *Service) Create(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	var in permission.Input
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	p, err := s.authService.RegisterPermission(c.Context(), sub, in)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusCreated, p)
}

// Delete deletes an unused custom permission.
func (s *Service) Delete(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = s.authService.DeleteCustomPermission(c.Context(), sub, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
