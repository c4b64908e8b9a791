package onboarding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/audit"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/tenant"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dbtest"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/onboarding"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/validate"
)

type fixture struct {
	db    *gorm.DB
	auth  *auth.Service
	svc   *onboarding.Service
	ctx   context.Context
	admin *auth.Subject
}

func setup(t *testing.T, tier models.RoleTier) fixture {
	t.Helper()

	db := dbtest.New(t)
	authService := auth.NewService(db)
	ctx := context.Background()

	require.NoError(t, authService.EnsureCatalog(ctx))

	r, err := role.FindByTier(db, tier)
	require.NoError(t, err)

	u, err := user.Create(db, user.Input{Name: "Ops", Email: "ops@ekklesia.test", Password: "ops password", RoleID: &r.ID})
	require.NoError(t, err)

	sub, err := authService.Subject(ctx, u.ID)
	require.NoError(t, err)

	return fixture{
		db:    db,
		auth:  authService,
		svc:   onboarding.NewService(authService, validate.New()),
		ctx:   ctx,
		admin: sub,
	}
}

func input() onboarding.Input {
	return onboarding.Input{
		Name:    "St. Mary",
		Address: "1 Church Road",
		Primary: onboarding.Contact{Name: "Fr. John", Email: "John@StMary.test", Password: "blessed password"},
		Secondary: &onboarding.Contact{
			Name:  "Anna",
			Email: "anna@stmary.test",
		},
	}
}

func TestOnboard(t *testing.T) {
	f := setup(t, models.TierEkklesiaAdmin)

	res, err := f.svc.Onboard(f.ctx, f.admin, input())
	require.NoError(t, err)

	assert.Equal(t, "St. Mary", res.Tenant.Name)
	assert.Equal(t, onboarding.AdminRoleName, res.AdminRole.Name)
	require.NotNil(t, res.AdminRole.TenantID)
	assert.Equal(t, res.Tenant.ID, *res.AdminRole.TenantID)

	assert.Equal(t, "john@stmary.test", res.Primary.Email)
	assert.Equal(t, models.UserTypePrimaryContact, res.Primary.UserType)
	assert.True(t, res.Primary.IsPrimaryAdmin)

	require.NotNil(t, res.Secondary)
	assert.Equal(t, models.UserTypeSecondaryContact, res.Secondary.UserType)
	assert.False(t, res.Secondary.IsPrimaryAdmin)

	assert.NotContains(t, res.GeneratedPasswords, "john@stmary.test")
	require.Contains(t, res.GeneratedPasswords, "anna@stmary.test")

	p := auth.NewLocalProvider(f.db)
	_, err = p.Authenticate(f.ctx, "anna@stmary.test", res.GeneratedPasswords["anna@stmary.test"])
	require.NoError(t, err)

	primary, err := f.auth.Subject(f.ctx, res.Primary.ID)
	require.NoError(t, err)
	assert.False(t, primary.IsAdmin())

	for _, name := range auth.TenantAdminPermissions() {
		assert.True(t, primary.Can(name), name)
	}

	assert.False(t, primary.Can(auth.PermTenantsCreate))

	entries, err := audit.List(f.db, audit.Filter{Outcome: models.AuditSuccess})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tenant.onboard", entries[0].Action)
	assert.Equal(t, res.Tenant.ID, entries[0].TargetID)
}

func TestOnboardSuperAdmin(t *testing.T) {
	f := setup(t, models.TierSuperAdmin)

	in := input()
	in.Secondary = nil

	res, err := f.svc.Onboard(f.ctx, f.admin, in)
	require.NoError(t, err)
	assert.Nil(t, res.Secondary)
	assert.Empty(t, res.GeneratedPasswords)
}

func TestOnboardRequiresGlobalAdmin(t *testing.T) {
	f := setup(t, models.TierEkklesiaManager)

	_, err := f.svc.Onboard(f.ctx, f.admin, input())
	require.ErrorIs(t, err, errs.ErrForbidden)

	entries, err := audit.List(f.db, audit.Filter{Outcome: models.AuditDenied})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	exists, err := tenant.Exists(f.db, "St. Mary")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOnboardValidation(t *testing.T) {
	f := setup(t, models.TierEkklesiaAdmin)

	in := input()
	in.Primary.Email = "not an email"

	_, err := f.svc.Onboard(f.ctx, f.admin, in)
	require.ErrorIs(t, err, errs.ErrValidation)

	in = input()
	in.Secondary.Email = "JOHN@stmary.test"

	_, err = f.svc.Onboard(f.ctx, f.admin, in)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestOnboardDuplicateTenant(t *testing.T) {
	f := setup(t, models.TierEkklesiaAdmin)

	_, err := f.svc.Onboard(f.ctx, f.admin, input())
	require.NoError(t, err)

	in := input()
	in.Name = "ST. MARY"
	in.Primary.Email = "other@stmary.test"
	in.Secondary = nil

	_, err = f.svc.Onboard(f.ctx, f.admin, in)
	require.ErrorIs(t, err, errs.ErrDuplicateName)
}

func TestOnboardRollsBack(t *testing.T) {
	f := setup(t, models.TierEkklesiaAdmin)

	in := input()
	in.Primary.Email = "ops@ekklesia.test"

	_, err := f.svc.Onboard(f.ctx, f.admin, in)
	require.ErrorIs(t, err, errs.ErrDuplicateName)

	exists, err := tenant.Exists(f.db, "St. Mary")
	require.NoError(t, err)
	assert.False(t, exists)

	var roles int64
	require.NoError(t, f.db.Model(&models.Role{}).Where("tenant_id IS NOT NULL").Count(&roles).Error)
	assert.Zero(t, roles)

	_, err = user.GetByEmail(f.db, "anna@stmary.test")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
