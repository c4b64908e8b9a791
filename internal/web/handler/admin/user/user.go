// Package user provides the API handlers managing user accounts.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the base path for user management.
const Path = "/users"

// RolesBody is the body of PUT /users/:id/roles.
type RolesBody struct {
	RoleIDs []uint `json:"role_ids" validate:"required,min=1"`
}

// PermissionBody is the body of POST /users/:id/permissions.
type PermissionBody struct {
	Permission string `json:"permission" validate:"required"`
}

// Service provides the user endpoints.
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

	view := auth.RequirePermission(authService, auth.PermUsersView)
	update := auth.RequirePermission(authService, auth.PermUsersUpdate)

	router.Get(Path, view, s.List)
	router.Post(Path, auth.RequirePermission(authService, auth.PermUsersCreate), s.Create)
	// reading oneself needs no permission; the service decides
	router.Get(Path+handler.IDPath, auth.Authenticated(), s.Get)
	router.Delete(Path+handler.IDPath, auth.RequirePermission(authService, auth.PermUsersDelete), s.Delete)
	router.Put(Path+"/:id/roles", update, s.SyncRoles)
	router.Post(Path+"/:id/permissions", update, s.GivePermission)
	router.Delete(Path+"/:id/permissions/:permission", update, s.RevokePermission)
	router.Post(Path+"/:id/activate", update, s.Activate)
	router.Post(Path+"/:id/deactivate", update, s.Deactivate)

	return nil
}

// List returns the users visible to the caller.
func (s *Service) List(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	users, err := s.authService.ListUsers(c.Context(), sub)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, users)
}

// Create creates a user.
func (s *Service) Create(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	var in user.Input
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	u, err := s.authService.CreateUser(c.Context(), sub, in)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusCreated, u)
}

// Get returns a user with roles and direct permissions.
func (s *Service) Get(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	detail, err := s.authService.GetUser(c.Context(), sub, id)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, detail)
}

// Delete deletes a user.
func (s *Service) Delete(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	if err = s.authService.DeleteUser(c.Context(), sub, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SyncRoles replaces the roles of a user.
func (s *Service) SyncRoles(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	var in RolesBody
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	if err = s.authService.SyncUserRoles(c.Context(), sub, id, in.RoleIDs); err != nil {
		return err
	}

	return s.written(c, id)
}

// GivePermission grants a permission directly to a user.
func (s *Service) GivePermission(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	var in PermissionBody
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	if err = s.authService.GiveUserPermission(c.Context(), sub, id, handler.PermissionRef(in.Permission)); err != nil {
		return err
	}

	return s.written(c, id)
}

// RevokePermission removes a direct grant.
func (s *Service) RevokePermission(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	ref := handler.PermissionRef(c.Params("permission"))
	if err = s.authService.RevokeUserPermission(c.Context(), sub, id, ref); err != nil {
		return err
	}

	return s.written(c, id)
}

// Activate activates a user.
func (s *Service) Activate(c fiber.Ctx) error {
	return s.setActive(c, true)
}

// Deactivate deactivates a user.
func (s *Service) Deactivate(c fiber.Ctx) error {
	return s.setActive(c, false)
}

func (s *Service) setActive(c fiber.Ctx, active bool) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	if err = s.authService.SetUserActive(c.Context(), sub, id, active); err != nil {
		return err
	}

	return s.written(c, id)
}

// written answers an authorized mutation with the updated user.
func (s *Service) written(c fiber.Ctx, id uint) error {
	detail, err := s.authService.UserDetail(c.Context(), id)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, detail)
}

func (s *Service) target(c fiber.Ctx) (*auth.Subject, uint, error) {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return nil, 0, err
	}

	id, err := handler.ParamID(c, "id")
	if err != nil {
		return nil, 0, err
	}

	return sub, id, nil
}
