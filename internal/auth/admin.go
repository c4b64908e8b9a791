package auth

import (
	"context"
	"fmt"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/audit"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/tenant"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// UserDetail is a user with its roles and direct permissions.
type UserDetail struct {
	models.User
	Roles             []models.Role `json:"roles"`
	DirectPermissions []string      `json:"direct_permissions"`
}

// RoleDetail is a role with its permissions.
type RoleDetail struct {
	models.Role
	Permissions []string `json:"permissions"`
}

// targetUser loads a user the actor may act on.
func (s *Service) targetUser(ctx context.Context, actor *Subject, userID uint) (*models.User, error) {
	u, err := user.Get(s.DB(ctx), userID)
	if err != nil {
		return nil, err
	}

	if err = actor.CheckTenant(u.TenantID); err != nil {
		return nil, err
	}

	return u, nil
}

// changeableUser is targetUser for mutations: the target must not outrank the actor.
func (s *Service) changeableUser(ctx context.Context, actor *Subject, userID uint) (*models.User, error) {
	u, err := s.targetUser(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	if actor.IsSuperAdmin() {
		return u, nil
	}

	target, err := s.Subject(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err = actor.CheckOutranks(target); err != nil {
		return nil, err
	}

	return u, nil
}

// targetRole loads a role the actor may modify. Global roles are reserved to SuperAdmin.
func (s *Service) targetRole(ctx context.Context, actor *Subject, roleID uint) (*models.Role, error) {
	r, err := role.Get(s.DB(ctx), roleID)
	if err != nil {
		return nil, err
	}

	if r.IsGlobal() {
		if !actor.IsSuperAdmin() {
			return nil, errs.Forbidden("global roles can only be changed by a super admin")
		}

		return r, nil
	}

	if err = actor.CheckTenant(r.TenantID); err != nil {
		return nil, err
	}

	return r, nil
}

// protectPrimaryAdmin rejects changes to a tenant's primary admin unless the actor is a global administrator.
func protectPrimaryAdmin(actor *Subject, target *models.User) error {
	if target.IsPrimaryAdmin && !actor.IsAdmin() {
		return errs.Forbidden("the primary admin can only be changed by a global administrator")
	}

	return nil
}

// grantable resolves refs and checks that each permission may be handed to an
// entity of tenant owner by the actor.
func (s *Service) grantable(ctx context.Context, actor *Subject, owner *uint, refs []permission.Ref) ([]permission.Ref, error) {
	perms, err := permission.ResolveAll(s.DB(ctx), refs)
	if err != nil {
		return nil, err
	}

	out := make([]permission.Ref, 0, len(perms))

	for i := range perms {
		p := &perms[i]

		if p.TenantID != nil && !sameTenant(p.TenantID, owner) {
			return nil, errs.Invalid("permissions", fmt.Sprintf("permission %q belongs to another tenant", p.Name))
		}

		if !actor.HasPermissionTo(permission.ByEntity(p)) {
			return nil, errs.Forbidden(fmt.Sprintf("cannot grant %q without holding it", p.Name))
		}

		out = append(out, permission.ByID(p.ID))
	}

	return out, nil
}

// CreateUser creates a user inside the actor's tenant (or the requested one, for global administrators).
func (s *Service) CreateUser(ctx context.Context, actor *Subject, in user.Input) (*models.User, error) {
	const action = "user.create"

	if err := actor.Require(PermUsersCreate); err != nil {
		return nil, s.fail(ctx, actor, action, targetUser, 0, err)
	}

	in.TenantID = actor.ScopeCreate(in.TenantID)
	in.IsPrimaryAdmin = false

	if in.RoleID != nil {
		r, err := role.Get(s.DB(ctx), *in.RoleID)
		if err != nil {
			return nil, err
		}

		if err = actor.CheckRoleAssignment(r, in.TenantID); err != nil {
			return nil, s.fail(ctx, actor, action, targetRole, r.ID, err)
		}
	}

	u, err := user.Create(s.DB(ctx), in)
	if err != nil {
		return nil, err
	}

	s.succeed(ctx, actor, action, targetUser, u.ID)

	return u, nil
}

// GetUser returns a user with roles and direct permissions. Users may always read themselves.
func (s *Service) GetUser(ctx context.Context, actor *Subject, userID uint) (*UserDetail, error) {
	const action = "user.get"

	if userID != actor.ID() {
		if err := actor.Require(PermUsersView); err != nil {
			return nil, s.fail(ctx, actor, action, targetUser, userID, err)
		}
	}

	u, err := s.targetUser(ctx, actor, userID)
	if err != nil {
		return nil, s.fail(ctx, actor, action, targetUser, userID, err)
	}

	return s.userDetail(ctx, u)
}

// UserDetail reads a user without any access check. It answers mutations the
// caller was already authorized for.
func (s *Service) UserDetail(ctx context.Context, userID uint) (*UserDetail, error) {
	u, err := user.Get(s.DB(ctx), userID)
	if err != nil {
		return nil, err
	}

	return s.userDetail(ctx, u)
}

func (s *Service) userDetail(ctx context.Context, u *models.User) (*UserDetail, error) {
	roles, err := user.Roles(s.DB(ctx), u.ID)
	if err != nil {
		return nil, err
	}

	direct, err := user.DirectPermissions(s.DB(ctx), u.ID)
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: *u, Roles: roles, DirectPermissions: permission.Names(direct)}, nil
}

// ListUsers returns the users visible to the actor.
func (s *Service) ListUsers(ctx context.Context, actor *Subject) ([]models.User, error) {
	if err := actor.Require(PermUsersView); err != nil {
		return nil, s.fail(ctx, actor, "user.list", targetUser, 0, err)
	}

	return user.List(s.DB(ctx), actor.Scope)
}

// SyncUserRoles replaces the roles of a user. At least one role is required and every
// role must be assignable by the actor.
func (s *Service) SyncUserRoles(ctx context.Context, actor *Subject, userID uint, roleIDs []uint) error {
	const action = "user.sync_roles"

	if err := actor.Require(PermUsersUpdate); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	target, err := s.changeableUser(ctx, actor, userID)
	if err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if len(roleIDs) == 0 {
		return s.fail(ctx, actor, action, targetUser, userID, errs.Invalid("role_ids", "at least one role is required"))
	}

	if err = protectPrimaryAdmin(actor, target); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	for _, id := range roleIDs {
		r, errR := role.Get(s.DB(ctx), id)
		if errR != nil {
			return errR
		}

		if errR = actor.CheckRoleAssignment(r, target.TenantID); errR != nil {
			return s.fail(ctx, actor, action, targetRole, id, errR)
		}
	}

	if err = user.SyncRoles(s.DB(ctx), userID, roleIDs); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetUser, userID)

	return nil
}

// GiveUserPermission grants a permission directly to a user.
func (s *Service) GiveUserPermission(ctx context.Context, actor *Subject, userID uint, ref permission.Ref) error {
	const action = "user.give_permission"

	if err := actor.Require(PermUsersUpdate); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	target, err := s.changeableUser(ctx, actor, userID)
	if err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	refs, err := s.grantable(ctx, actor, target.TenantID, []permission.Ref{ref})
	if err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if err = user.GivePermissionTo(s.DB(ctx), userID, refs[0]); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetUser, userID)

	return nil
}

// RevokeUserPermission removes a direct grant from a user.
func (s *Service) RevokeUserPermission(ctx context.Context, actor *Subject, userID uint, ref permission.Ref) error {
	const action = "user.revoke_permission"

	if err := actor.Require(PermUsersUpdate); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if _, err := s.changeableUser(ctx, actor, userID); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if err := user.RevokePermissionTo(s.DB(ctx), userID, ref); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetUser, userID)

	return nil
}

// SetUserActive activates or deactivates a user. A tenant's primary admin is
// protected from everyone but global administrators.
func (s *Service) SetUserActive(ctx context.Context, actor *Subject, userID uint, active bool) error {
	action := "user.deactivate"
	if active {
		action = "user.activate"
	}

	if err := actor.Require(PermUsersUpdate); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	target, err := s.changeableUser(ctx, actor, userID)
	if err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if err = protectPrimaryAdmin(actor, target); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if !active && target.ID == actor.ID() {
		return s.fail(ctx, actor, action, targetUser, userID, errs.Invalid("id", "you cannot deactivate yourself"))
	}

	if err = user.SetActive(s.DB(ctx), userID, active); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetUser, userID)

	return nil
}

// DeleteUser soft-deletes a user, with the same primary admin protection as deactivation.
func (s *Service) DeleteUser(ctx context.Context, actor *Subject, userID uint) error {
	const action = "user.delete"

	if err := actor.Require(PermUsersDelete); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	target, err := s.changeableUser(ctx, actor, userID)
	if err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if err = protectPrimaryAdmin(actor, target); err != nil {
		return s.fail(ctx, actor, action, targetUser, userID, err)
	}

	if target.ID == actor.ID() {
		return s.fail(ctx, actor, action, targetUser, userID, errs.Invalid("id", "you cannot delete yourself"))
	}

	if err = user.Delete(s.DB(ctx), userID); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetUser, userID)

	return nil
}

// CreateRole creates a role. Global tiers are reserved to SuperAdmin; custom roles land in
// the actor's tenant (or the requested one, for global administrators).
func (s *Service) CreateRole(ctx context.Context, actor *Subject, in role.Input) (*models.Role, error) {
	const action = "role.create"

	if err := actor.Require(PermRolesCreate); err != nil {
		return nil, s.fail(ctx, actor, action, targetRole, 0, err)
	}

	if in.Tier != "" && in.Tier != models.TierCustom {
		if !actor.IsSuperAdmin() {
			return nil, s.fail(ctx, actor, action, targetRole, 0,
				errs.Forbidden("global roles can only be created by a super admin"))
		}

		in.TenantID = nil
	} else {
		in.Tier = models.TierCustom
		in.TenantID = actor.ScopeCreate(in.TenantID)

		if in.TenantID == nil {
			return nil, s.fail(ctx, actor, action, targetRole, 0,
				errs.Invalid("tenant_id", "custom roles need a tenant"))
		}
	}

	r, err := role.Create(s.DB(ctx), in)
	if err != nil {
		return nil, err
	}

	s.succeed(ctx, actor, action, targetRole, r.ID)

	return r, nil
}

// GetRole returns a role with its permissions. Global roles are visible to everyone
// allowed to view roles.
func (s *Service) GetRole(ctx context.Context, actor *Subject, roleID uint) (*RoleDetail, error) {
	const action = "role.get"

	if err := actor.Require(PermRolesView); err != nil {
		return nil, s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	r, err := role.Get(s.DB(ctx), roleID)
	if err != nil {
		return nil, err
	}

	if r.TenantID != nil {
		if err = actor.CheckTenant(r.TenantID); err != nil {
			return nil, s.fail(ctx, actor, action, targetRole, roleID, err)
		}
	}

	return s.roleDetail(ctx, r)
}

// RoleDetail reads a role without any access check. It answers mutations the
// caller was already authorized for.
func (s *Service) RoleDetail(ctx context.Context, roleID uint) (*RoleDetail, error) {
	r, err := role.Get(s.DB(ctx), roleID)
	if err != nil {
		return nil, err
	}

	return s.roleDetail(ctx, r)
}

func (s *Service) roleDetail(ctx context.Context, r *models.Role) (*RoleDetail, error) {
	perms, err := role.Permissions(s.DB(ctx), r.ID)
	if err != nil {
		return nil, err
	}

	return &RoleDetail{Role: *r, Permissions: permission.Names(perms)}, nil
}

// ListRoles returns the global roles plus the roles of the actor's tenant.
func (s *Service) ListRoles(ctx context.Context, actor *Subject) ([]models.Role, error) {
	if err := actor.Require(PermRolesView); err != nil {
		return nil, s.fail(ctx, actor, "role.list", targetRole, 0, err)
	}

	return role.List(s.DB(ctx), actor.SharedScope)
}

// SyncRolePermissions replaces the permission set of a role.
func (s *Service) SyncRolePermissions(ctx context.Context, actor *Subject, roleID uint, refs []permission.Ref) error {
	const action = "role.sync_permissions"

	if err := actor.Require(PermRolesUpdate); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	r, err := s.targetRole(ctx, actor, roleID)
	if err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	resolved, err := s.grantable(ctx, actor, r.TenantID, refs)
	if err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if err = role.SyncPermissions(s.DB(ctx), roleID, resolved); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetRole, roleID)

	return nil
}

// GrantRolePermission adds one permission to a role.
func (s *Service) GrantRolePermission(ctx context.Context, actor *Subject, roleID uint, ref permission.Ref) error {
	const action = "role.grant_permission"

	if err := actor.Require(PermRolesUpdate); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	r, err := s.targetRole(ctx, actor, roleID)
	if err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	resolved, err := s.grantable(ctx, actor, r.TenantID, []permission.Ref{ref})
	if err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if err = role.Grant(s.DB(ctx), roleID, resolved[0]); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetRole, roleID)

	return nil
}

// RevokeRolePermission removes one permission from a role.
func (s *Service) RevokeRolePermission(ctx context.Context, actor *Subject, roleID uint, ref permission.Ref) error {
	const action = "role.revoke_permission"

	if err := actor.Require(PermRolesUpdate); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if _, err := s.targetRole(ctx, actor, roleID); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if err := role.Revoke(s.DB(ctx), roleID, ref); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetRole, roleID)

	return nil
}

// SetRoleActive activates or deactivates a role.
func (s *Service) SetRoleActive(ctx context.Context, actor *Subject, roleID uint, active bool) error {
	action := "role.deactivate"
	if active {
		action = "role.activate"
	}

	if err := actor.Require(PermRolesUpdate); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if _, err := s.targetRole(ctx, actor, roleID); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if err := role.SetActive(s.DB(ctx), roleID, active); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetRole, roleID)

	return nil
}

// DeleteRole soft-deletes a role.
func (s *Service) DeleteRole(ctx context.Context, actor *Subject, roleID uint) error {
	const action = "role.delete"

	if err := actor.Require(PermRolesDelete); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if _, err := s.targetRole(ctx, actor, roleID); err != nil {
		return s.fail(ctx, actor, action, targetRole, roleID, err)
	}

	if err := role.Delete(s.DB(ctx), roleID); err != nil {
		return err
	}

	s.succeed(ctx, actor, action, targetRole, roleID)

	return nil
}

// RegisterPermission registers a permission. Tenant users register custom permissions
// in their own tenant; global permissions are reserved to SuperAdmin.
func (s *Service) RegisterPermission(ctx context.Context, actor *Subject, in permission.Input) (*models.Permission, error) {
	const action = "permission.create"

	if err := actor.Require(PermPermissionsCreate); err != nil {
		return nil, s.fail(ctx, actor, action, targetPermission, 0, err)
	}

	in.TenantID = actor.ScopeCreate(in.TenantID)
	if in.TenantID == nil && !actor.IsSuperAdmin() {
		return nil, s.fail(ctx, actor, action, targetPermission, 0,
			errs.Forbidden("global permissions can only be created by a super admin"))
	}

	p, err := permission.Register(s.DB(ctx), in)
	if err != nil {
		return nil, err
	}

	s.succeed(ctx, actor, action, targetPermission, p.ID)

	return p, nil
}

// DeleteCustomPermission deletes an unused custom permission of the actor's tenant.
func (s *Service) DeleteCustomPermission(ctx context.Context, actor *Subject, permissionID uint) error {
	const action = "permission.delete"

	if err := actor.Require(PermPermissionsDelete); err != nil {
		return s.fail(ctx, actor, action, targetPermission, permissionID, err)
	}

	p, err := permission.FindByID(s.DB(ctx), permissionID)
	if err != nil {
		return err
	}

	if p.TenantID != nil {
		if err = actor.CheckTenant(p.TenantID); err != nil {
			return s.fail(ctx, actor, action, targetPermission, permissionID, err)
		}
	}

	if err = permission.DeleteCustom(s.DB(ctx), permissionID); err != nil {
		return s.fail(ctx, actor, action, targetPermission, permissionID, err)
	}

	s.succeed(ctx, actor, action, targetPermission, permissionID)

	return nil
}

// ListPermissions returns the active catalog visible to the actor: global permissions
// plus the actor's tenant custom permissions. Global administrators see the whole catalog.
func (s *Service) ListPermissions(ctx context.Context, actor *Subject) ([]models.Permission, error) {
	if err := actor.Require(PermPermissionsView); err != nil {
		return nil, s.fail(ctx, actor, "permission.list", targetPermission, 0, err)
	}

	if actor.IsAdmin() {
		return permission.GetAll(s.DB(ctx))
	}

	return permission.ListActive(s.DB(ctx), actor.TenantID())
}

// ListTenants returns every tenant for global administrators, the actor's own otherwise.
func (s *Service) ListTenants(ctx context.Context, actor *Subject) ([]models.Tenant, error) {
	if err := actor.Require(PermTenantsView); err != nil {
		return nil, s.fail(ctx, actor, "tenant.list", targetTenant, 0, err)
	}

	if actor.IsAdmin() {
		return tenant.GetAll(s.DB(ctx))
	}

	if actor.TenantID() == nil {
		return []models.Tenant{}, nil
	}

	t, err := tenant.Get(s.DB(ctx), *actor.TenantID())
	if err != nil {
		return nil, err
	}

	return []models.Tenant{*t}, nil
}

// ListAudit returns the newest audit entries of the actor's tenant; global administrators see all.
func (s *Service) ListAudit(ctx context.Context, actor *Subject, f audit.Filter) ([]models.AuditLog, error) {
	if err := actor.Require(PermAuditView); err != nil {
		return nil, s.fail(ctx, actor, "audit.list", "", 0, err)
	}

	if !actor.IsAdmin() {
		f.TenantID = actor.TenantID()

		if f.TenantID == nil {
			f.ActorID = actor.ID()
		}
	}

	return audit.List(s.DB(ctx), f)
}
