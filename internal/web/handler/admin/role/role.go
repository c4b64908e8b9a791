// Package role provides the API handlers managing roles and their permissions.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the base path for role management.
const Path = "/roles"

// PermissionsBody is the body of PUT /roles/:id/permissions. An empty list revokes everything.
type PermissionsBody struct {
	Permissions []string `json:"permissions"`
}

// PermissionBody is the body of POST /roles/:id/permissions.
type PermissionBody struct {
	Permission string `json:"permission" validate:"required"`
}

// Service provides the role endpoints.
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

	view := auth.RequirePermission(authService, auth.PermRolesView)
	update := auth.RequirePermission(authService, auth.PermRolesUpdate)

	router.Get(Path, view, s.List)
	router.Post(Path, auth.RequirePermission(authService, auth.PermRolesCreate), s.Create)
	router.Get(Path+handler.IDPath, view, s.Get)
	router.Delete(Path+handler.IDPath, auth.RequirePermission(authService, auth.PermRolesDelete), s.Delete)
	router.Put(Path+"/:id/permissions", update, s.SyncPermissions)
	router.Post(Path+"/:id/permissions", update, s.Grant)
	router.Delete(Path+"/:id/permissions/:permission", update, s.Revoke)
	router.Post(Path+"/:id/activate", update, s.Activate)
	router.Post(Path+"/:id/deactivate", update, s.Deactivate)

	return nil
}

// List returns the global roles and the roles of the caller's tenant.
func (s *Service) List(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	roles, err := s.authService.ListRoles(c.Context(), sub)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, roles)
}

// Create creates a role.
func (s *Service) Create(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	var in role.Input
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	r, err := s.authService.CreateRole(c.Context(), sub, in)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusCreated, r)
}

// Get returns a role with its permissions.
func (s *Service) Get(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	detail, err := s.authService.GetRole(c.Context(), sub, id)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, detail)
}

// Delete deletes a role.
func (s *Service) Delete(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	if err = s.authService.DeleteRole(c.Context(), sub, id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SyncPermissions replaces the permission set of a role.
func (s *Service) SyncPermissions(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	var in PermissionsBody
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	refs := make([]permission.Ref, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		refs = append(refs, handler.PermissionRef(p))
	}

	if err = s.authService.SyncRolePermissions(c.Context(), sub, id, refs); err != nil {
		return err
	}

	return s.written(c, id)
}

// Grant adds a permission to a role.
func (s *Service) Grant(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	var in PermissionBody
	if err = handler.Parse(c, &in); err != nil {
		return err
	}

	if err = s.authService.GrantRolePermission(c.Context(), sub, id, handler.PermissionRef(in.Permission)); err != nil {
		return err
	}

	return s.written(c, id)
}

// Revoke removes a permission from a role.
func (s *Service) Revoke(c fiber.Ctx) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	ref := handler.PermissionRef(c.Params("permission"))
	if err = s.authService.RevokeRolePermission(c.Context(), sub, id, ref); err != nil {
		return err
	}

	return s.written(c, id)
}

// Activate activates a role.
func (s *Service) Activate(c fiber.Ctx) error {
	return s.setActive(c, true)
}

// Deactivate deactivates a role.
func (s *Service) Deactivate(c fiber.Ctx) error {
	return s.setActive(c, false)
}

func (s *Service) setActive(c fiber.Ctx, active bool) error {
	sub, id, err := s.target(c)
	if err != nil {
		return err
	}

	if err = s.authService.SetRoleActive(c.Context(), sub, id, active); err != nil {
		return err
	}

	return s.written(c, id)
}

// written answers an authorized mutation with the updated role.
func (s *Service) written(c fiber.Ctx, id uint) error {
	detail, err := s.authService.RoleDetail(c.Context(), id)
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
