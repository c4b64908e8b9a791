package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dbtest"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

func uintPtr(v uint) *uint { return &v }

func newTenant(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	tenant := models.Tenant{Name: name}
	require.NoError(t, db.Create(&tenant).Error)

	return tenant.ID
}

func TestRegister(t *testing.T) {
	db := dbtest.New(t)

	p, err := permission.Register(db, permission.Input{
		Name:        "users.create",
		DisplayName: "<b>Create users</b>",
		Description: "Create user accounts",
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "users", p.Module)
	assert.Equal(t, "Create users", p.DisplayName)
	assert.False(t, p.IsCustom)
	assert.True(t, p.Active)
	assert.True(t, p.IsGlobal())
}

func TestRegisterEmptyName(t *testing.T) {
	db := dbtest.New(t)

	_, err := permission.Register(db, permission.Input{Name: "  "})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRegisterNilDB(t *testing.T) {
	_, err := permission.Register(nil, permission.Input{Name: "x.y"})
	assert.ErrorIs(t, err, permission.ErrDBNil)
}

func TestRegisterDuplicateIsGlobal(t *testing.T) {
	db := dbtest.New(t)
	t5 := newTenant(t, db, "St. Mary")
	t7 := newTenant(t, db, "St. Joseph")

	_, err := permission.Register(db, permission.Input{Name: "special.action", TenantID: uintPtr(t5)})
	require.NoError(t, err)

	// another tenant cannot reuse the name
	_, err = permission.Register(db, permission.Input{Name: "special.action", TenantID: uintPtr(t7)})
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	// neither can a global permission
	_, err = permission.Register(db, permission.Input{Name: "special.action"})
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	var dup *errs.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "special.action", dup.Name)
}

func TestFindAndResolve(t *testing.T) {
	db := dbtest.New(t)

	p, err := permission.Register(db, permission.Input{Name: "roles.view"})
	require.NoError(t, err)

	byName, err := permission.FindByName(db, "roles.view")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	for _, ref := range []permission.Ref{
		permission.ByName("roles.view"),
		permission.ByID(p.ID),
		permission.ByEntity(p),
	} {
		got, errR := permission.Resolve(db, ref)
		require.NoError(t, errR, ref.String())
		assert.Equal(t, p.ID, got.ID)
	}

	_, err = permission.FindByName(db, "roles.nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = permission.Resolve(db, permission.ByID(9999))
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = permission.Resolve(db, permission.Ref{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestResolveAllDeduplicates(t *testing.T) {
	db := dbtest.New(t)

	p, err := permission.Register(db, permission.Input{Name: "families.view"})
	require.NoError(t, err)

	got, err := permission.ResolveAll(db, []permission.Ref{permission.ByName("families.view"), permission.ByID(p.ID)})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = permission.ResolveAll(db, permission.Refs("families.view", "families.nope"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListActive(t *testing.T) {
	db := dbtest.New(t)
	t5 := newTenant(t, db, "St. Mary")
	t7 := newTenant(t, db, "St. Joseph")

	for _, in := range []permission.Input{
		{Name: "users.view"},
		{Name: "users.create"},
		{Name: "bccs.export", TenantID: uintPtr(t5)},
		{Name: "families.audit", TenantID: uintPtr(t7)},
		{Name: "legacy.old"},
	} {
		_, err := permission.Register(db, in)
		require.NoError(t, err)
	}

	old, err := permission.FindByName(db, "legacy.old")
	require.NoError(t, err)
	require.NoError(t, permission.SetActive(db, old.ID, false))

	global, err := permission.ListActive(db, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.create", "users.view"}, permission.Names(global))

	tenant5, err := permission.ListActive(db, uintPtr(t5))
	require.NoError(t, err)
	assert.Equal(t, []string{"bccs.export", "users.create", "users.view"}, permission.Names(tenant5))

	all, err := permission.GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSetActiveNotFound(t *testing.T) {
	db := dbtest.New(t)

	assert.ErrorIs(t, permission.SetActive(db, 42, true), errs.ErrNotFound)
}

func TestDeleteCustom(t *testing.T) {
	db := dbtest.New(t)
	t5 := newTenant(t, db, "St. Mary")

	system, err := permission.Register(db, permission.Input{Name: "users.view"})
	require.NoError(t, err)

	custom, err := permission.Register(db, permission.Input{Name: "bccs.export", TenantID: uintPtr(t5)})
	require.NoError(t, err)

	used, err := permission.Register(db, permission.Input{Name: "bccs.import", TenantID: uintPtr(t5)})
	require.NoError(t, err)

	role := models.Role{Name: "Clerk", TenantID: uintPtr(t5), IsCustom: true, Tier: models.TierCustom}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Create(&models.PermissionRole{PermissionID: used.ID, RoleID: role.ID}).Error)

	assert.ErrorIs(t, permission.DeleteCustom(db, system.ID), errs.ErrValidation)
	assert.ErrorIs(t, permission.DeleteCustom(db, used.ID), errs.ErrValidation)
	assert.ErrorIs(t, permission.DeleteCustom(db, 9999), errs.ErrNotFound)

	require.NoError(t, permission.DeleteCustom(db, custom.ID))

	_, err = permission.FindByID(db, custom.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "users.view", permission.ByName("users.view").String())
	assert.Equal(t, "#7", permission.ByID(7).String())
	assert.True(t, permission.ByEntity(nil).IsZero())
	assert.Equal(t, "users.view", permission.ByEntity(&models.Permission{ID: 3, Name: "users.view"}).Name())
	assert.Equal(t, uint(3), permission.ByEntity(&models.Permission{ID: 3, Name: "users.view"}).ID())
}
