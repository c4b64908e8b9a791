package auth

import (
	"strings"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

// Permission constants define the system permissions seeded into the catalog.
// Names follow module.action.
const (
	// PermUsersView allows listing and reading user accounts.
	PermUsersView = "users.view"
	// PermUsersCreate allows creating user accounts.
	PermUsersCreate = "users.create"
	// PermUsersUpdate allows changing roles, direct permissions and activation of users.
	PermUsersUpdate = "users.update"
	// PermUsersDelete allows deleting user accounts.
	PermUsersDelete = "users.delete"

	// PermRolesView allows listing roles and their permissions.
	PermRolesView = "roles.view"
	// PermRolesCreate allows creating roles.
	PermRolesCreate = "roles.create"
	// PermRolesUpdate allows changing role permissions and activation.
	PermRolesUpdate = "roles.update"
	// PermRolesDelete allows deleting roles.
	PermRolesDelete = "roles.delete"

	// PermPermissionsView allows listing the permission catalog.
	PermPermissionsView = "permissions.view"
	// PermPermissionsCreate allows registering custom permissions.
	PermPermissionsCreate = "permissions.create"
	// PermPermissionsDelete allows deleting unused custom permissions.
	PermPermissionsDelete = "permissions.delete"

	// PermTenantsView allows reading tenants.
	PermTenantsView = "tenants.view"
	// PermTenantsCreate allows onboarding new tenants.
	PermTenantsCreate = "tenants.create"
	// PermTenantsUpdate allows changing tenants.
	PermTenantsUpdate = "tenants.update"

	// PermAuditView allows reading the audit trail.
	PermAuditView = "audit.view"
)

// registryModules are the record-keeping modules whose CRUD permissions are seeded.
var registryModules = []string{"families", "bccs", "dioceses", "bishops", "sacraments"} //nolint:gochecknoglobals

var crud = []string{"view", "create", "update", "delete"} //nolint:gochecknoglobals

// SystemPermissions returns the system permission catalog.
func SystemPermissions() []permission.Input {
	out := []permission.Input{
		sys(PermUsersView, "View users", "management"),
		sys(PermUsersCreate, "Create users", "management"),
		sys(PermUsersUpdate, "Update users", "management"),
		sys(PermUsersDelete, "Delete users", "management"),
		sys(PermRolesView, "View roles", "access control"),
		sys(PermRolesCreate, "Create roles", "access control"),
		sys(PermRolesUpdate, "Update roles", "access control"),
		sys(PermRolesDelete, "Delete roles", "access control"),
		sys(PermPermissionsView, "View permissions", "access control"),
		sys(PermPermissionsCreate, "Create permissions", "access control"),
		sys(PermPermissionsDelete, "Delete permissions", "access control"),
		sys(PermTenantsView, "View tenants", "administration"),
		sys(PermTenantsCreate, "Onboard tenants", "administration"),
		sys(PermTenantsUpdate, "Update tenants", "administration"),
		sys(PermAuditView, "View audit trail", "administration"),
	}

	for _, module := range registryModules {
		for _, action := range crud {
			out = append(out, sys(module+"."+action, title(action)+" "+module, "records"))
		}
	}

	return out
}

// GlobalRole describes a seeded system role.
type GlobalRole struct {
	Name        string
	Tier        models.RoleTier
	Description string
}

// GlobalRoles returns the four system roles in tier order.
func GlobalRoles() []GlobalRole {
	return []GlobalRole{
		{Name: "SuperAdmin", Tier: models.TierSuperAdmin, Description: "Full access to every tenant and setting"},
		{Name: "EkklesiaAdmin", Tier: models.TierEkklesiaAdmin, Description: "Administers all tenants"},
		{Name: "EkklesiaManager", Tier: models.TierEkklesiaManager, Description: "Manages records across tenants"},
		{Name: "EkklesiaUser", Tier: models.TierEkklesiaUser, Description: "Reads records"},
	}
}

// DefaultGrants returns the permissions seeded for a global tier.
// SuperAdmin is granted the whole catalog for visibility; the evaluator bypasses checks for it anyway.
func DefaultGrants(tier models.RoleTier) []string {
	all := names(SystemPermissions())

	switch tier {
	case models.TierSuperAdmin, models.TierEkklesiaAdmin:
		return all
	case models.TierEkklesiaManager:
		out := []string{PermUsersView, PermRolesView, PermPermissionsView, PermTenantsView}
		for _, module := range registryModules {
			out = append(out, module+".view", module+".create", module+".update")
		}

		return out
	case models.TierEkklesiaUser:
		out := make([]string, 0, len(registryModules))
		for _, module := range registryModules {
			out = append(out, module+".view")
		}

		return out
	default:
		return nil
	}
}

// TenantAdminPermissions is the set granted to the Administrator role created at onboarding.
func TenantAdminPermissions() []string {
	out := []string{
		PermUsersView, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
		PermRolesView, PermRolesCreate, PermRolesUpdate, PermRolesDelete,
		PermPermissionsView, PermPermissionsCreate, PermPermissionsDelete,
		PermTenantsView, PermAuditView,
	}

	for _, module := range []string{"families", "bccs", "sacraments"} {
		for _, action := range crud {
			out = append(out, module+"."+action)
		}
	}

	out = append(out, "dioceses.view", "bishops.view")

	return out
}

func sys(name, display, category string) permission.Input {
	module, _, _ := strings.Cut(name, ".")

	return permission.Input{
		Name:        name,
		DisplayName: display,
		Description: display,
		Module:      module,
		Category:    category,
	}
}

func names(in []permission.Input) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		out = append(out, p.Name)
	}

	return out
}

func title(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
