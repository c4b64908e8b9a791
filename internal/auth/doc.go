// Package auth provides authentication and authorization functionality for the application.
//
// This package implements a multi-tenant Role-Based Access Control (RBAC) system
// backed by the local database, with Argon2id password hashing for login.
//
// # Authorization Model
//
// A permission is held through three independent sources, combined with OR:
//   - SuperAdmin holds every permission, listed or not
//   - Permissions granted directly to the user (permission_user)
//   - Permissions of the user's roles: the legacy users.role_id plus every role_user membership
//
// There is no deny rule. Inactive roles and inactive permissions grant nothing, and an
// inactive user holds nothing. Tier checks (IsSuperAdmin, IsEkklesiaAdmin, IsAdmin, ...)
// read the role tier column, never the role name.
//
// # Tenant Isolation
//
// Subject.CheckTenant confines access to the caller's own tenant unless the caller is
// a global administrator. Subject.ScopeCreate forces the tenant of new rows.
// Subject.CheckRoleAssignment rejects roles of another tenant than the caller's or the
// target user's with a ValidationError, whatever the caller's tier. Subject.CheckOutranks
// keeps users from changing accounts of a more privileged tier.
//
// # Permission Checking
//
// Service.Subject loads a Subject once per request; its methods answer without further
// queries:
//   - HasPermissionTo: Check if user has a specific permission
//   - HasAnyPermission: Check if user has at least one permission from a list
//   - HasAllPermissions: Check if user has all permissions from a list
//   - GetAllPermissions: Retrieve all permissions for a user
//
// The Service methods of the same names take a user id and return (bool, error):
// a failed lookup is an error, never a false.
//
// # Administrative Operations
//
// Mutations that depend on who is calling (CreateUser, SyncUserRoles, SetUserActive,
// SyncRolePermissions, ...) are methods on Service taking the acting Subject. They run
// the capability check, the isolation guard and the primary admin protection before
// touching the database, and write every denial and every success to the audit trail.
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - RequirePermission: Protect routes requiring a specific permission
//   - RequireAnyPermission: Protect routes requiring any of several permissions
//   - RequireAllPermissions: Protect routes requiring all of several permissions
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	sub, err := authService.Subject(ctx, userID)
//	if err != nil {
//	    return err
//	}
//
//	if sub.HasPermissionTo(permission.ByName(auth.PermUsersCreate)) {
//	    ...
//	}
//
//	app.Get("/api/users",
//	    auth.RequirePermission(authService, auth.PermUsersView),
//	    handler,
//	)
package auth
