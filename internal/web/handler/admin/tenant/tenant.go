// Package tenant provides the API handlers listing and onboarding tenants.
package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/onboarding"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the base path of tenants.
const Path = "/tenants"

// Service provides the tenant endpoints.
type Service struct {
	cfg         *config.Config
	authService *auth.Service
	onboarding  *onboarding.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service, ob *onboarding.Service) error {
	if router == nil || cfg == nil || authService == nil || ob == nil {
		return errors.New(handler.ErrNilFatalLogMsg)
	}

	s.cfg = cfg
	s.authService = authService
	s.onboarding = ob

	router.Get(Path, auth.RequirePermission(authService, auth.PermTenantsView), s.List)
	router.Post(Path, auth.RequirePermission(authService, auth.PermTenantsCreate), s.Onboard)

	return nil
}

// List returns the tenants visible to the caller.
func (s *Service) List(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	tenants, err := s.authService.ListTenants(c.Context(), sub)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, tenants)
}

// Onboard creates a tenant with its administrator role and contacts.
func (s *Service) Onboard(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	// Onboard validates after its own admin check.
	var in onboarding.Input
	if err = c.Bind().JSON(&in); err != nil && !errors.Is(err, errs.ErrValidation) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := s.onboarding.Onboard(c.Context(), sub, in)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusCreated, res)
}
