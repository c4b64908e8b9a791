package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

func TestNewServicePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { auth.NewService(nil) })
}

func TestEnsureCatalogIsIdempotent(t *testing.T) {
	f := setup(t)

	// an operator change that must survive a restart
	adminID := f.globalRole(t, models.TierEkklesiaAdmin)
	require.NoError(t, role.Revoke(f.db, adminID, permission.ByName(auth.PermAuditView)))

	require.NoError(t, f.svc.EnsureCatalog(f.ctx))

	perms, err := permission.GetAll(f.db)
	require.NoError(t, err)
	assert.Len(t, perms, len(auth.SystemPermissions()))

	roles, err := role.List(f.db)
	require.NoError(t, err)
	assert.Len(t, roles, len(auth.GlobalRoles()))

	has, err := role.HasPermission(f.db, adminID, permission.ByName(auth.PermAuditView))
	require.NoError(t, err)
	assert.False(t, has)

	has, err = role.HasPermission(f.db, f.globalRole(t, models.TierEkklesiaUser), permission.ByName("families.view"))
	require.NoError(t, err)
	assert.True(t, has)
}

// Role "Administrator" of tenant 5 grants users.view and users.create; a member holds
// exactly those until given users.delete directly.
func TestRoleAndDirectPermissions(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	adminRole := f.tenantRole(t, t5, "Administrator", auth.PermUsersView, auth.PermUsersCreate)
	u := f.user(t, "u@t5.test", uintPtr(t5), adminRole)

	ok, err := f.svc.HasPermission(f.ctx, u.ID, permission.ByName(auth.PermUsersCreate))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasPermission(f.ctx, u.ID, permission.ByName(auth.PermUsersDelete))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, user.GivePermissionTo(f.db, u.ID, permission.ByName(auth.PermUsersDelete)))

	ok, err = f.svc.HasPermission(f.ctx, u.ID, permission.ByName(auth.PermUsersDelete))
	require.NoError(t, err)
	assert.True(t, ok)

	has, err := role.HasPermission(f.db, adminRole, permission.ByName(auth.PermUsersDelete))
	require.NoError(t, err)
	assert.False(t, has)

	names, err := f.svc.GetUserPermissions(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.PermUsersCreate, auth.PermUsersDelete, auth.PermUsersView}, names)

	sub := f.subject(t, u.ID)
	assert.True(t, sub.DirectlyHas(permission.ByName(auth.PermUsersDelete)))
	assert.True(t, sub.RoleHas(permission.ByName(auth.PermUsersView)))
	assert.False(t, sub.RoleHas(permission.ByName(auth.PermUsersDelete)))
}

func TestSyncToEmptyRemovesEveryGrant(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	granted := []string{auth.PermUsersView, auth.PermUsersCreate, auth.PermRolesView}
	r := f.tenantRole(t, t5, "Clerk", granted...)
	u := f.user(t, "clerk@t5.test", uintPtr(t5), r)

	require.NoError(t, role.SyncPermissions(f.db, r, nil))

	for _, name := range granted {
		has, err := role.HasPermission(f.db, r, permission.ByName(name))
		require.NoError(t, err)
		assert.False(t, has, name)
	}

	names, err := f.svc.GetUserPermissions(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestAnyAndAllPermissions(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	u := f.user(t, "u@t5.test", uintPtr(t5), f.tenantRole(t, t5, "Reader", "families.view"))

	ok, err := f.svc.HasAnyPermission(f.ctx, u.ID, permission.Refs("families.update", "families.view")...)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasAllPermissions(f.ctx, u.ID, permission.Refs("families.update", "families.view")...)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.HasAnyPermission(f.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.HasAllPermissions(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSuperAdminHoldsEverything(t *testing.T) {
	f := setup(t)
	sub := f.superAdmin(t)

	assert.True(t, sub.IsSuperAdmin())
	assert.True(t, sub.Can("not.registered"))

	ok, err := f.svc.HasPermission(f.ctx, sub.ID(), permission.ByName("not.registered"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInactiveRoleGrantsNothing(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	r := f.tenantRole(t, t5, "Clerk", auth.PermUsersView)
	u := f.user(t, "u@t5.test", uintPtr(t5), r)

	require.NoError(t, role.Deactivate(f.db, r))

	sub := f.subject(t, u.ID)
	assert.False(t, sub.Can(auth.PermUsersView))
	assert.Empty(t, sub.Roles)

	require.NoError(t, role.Activate(f.db, r))
	assert.True(t, f.subject(t, u.ID).Can(auth.PermUsersView))
}

func TestDeactivatedPermissionGrantsNothing(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	u := f.user(t, "u@t5.test", uintPtr(t5), f.tenantRole(t, t5, "Clerk", auth.PermUsersView))

	p, err := permission.FindByName(f.db, auth.PermUsersView)
	require.NoError(t, err)
	require.NoError(t, permission.SetActive(f.db, p.ID, false))

	assert.False(t, f.subject(t, u.ID).Can(auth.PermUsersView))
}

func TestTierComesFromEveryRole(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	u := f.user(t, "u@t5.test", uintPtr(t5),
		f.tenantRole(t, t5, "Clerk"),
		f.globalRole(t, models.TierEkklesiaAdmin))

	sub := f.subject(t, u.ID)
	assert.True(t, sub.IsAdmin())
	assert.Equal(t, 2, sub.TierLevel())
	assert.Len(t, sub.Roles, 2)
}

func TestRenamedRoleKeepsTier(t *testing.T) {
	f := setup(t)

	id := f.globalRole(t, models.TierSuperAdmin)
	require.NoError(t, f.db.Model(&models.Role{}).Where("id = ?", id).Update("name", "Root").Error)

	u := f.user(t, "root@ekklesia.test", nil, id)
	assert.True(t, f.subject(t, u.ID).IsSuperAdmin())
}

func TestSubjectUnknownUser(t *testing.T) {
	f := setup(t)

	_, err := f.svc.HasPermission(f.ctx, 4242, permission.ByName(auth.PermUsersView))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestHasPermissionReportsStorageErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection reset"))

	ok, err := auth.NewService(db).HasPermission(context.Background(), 1, permission.ByName(auth.PermUsersView))
	require.Error(t, err)
	assert.False(t, ok)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
