package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

func subjectWith(tenantID *uint, roles ...models.Role) *auth.Subject {
	return auth.NewSubject(activeUser(tenantID), roles, nil, nil)
}

func TestCheckTenant(t *testing.T) {
	member := subjectWith(uintPtr(5), customRole(1))

	require.NoError(t, member.CheckTenant(uintPtr(5)))

	err := member.CheckTenant(uintPtr(7))
	require.ErrorIs(t, err, errs.ErrTenantIsolation)
	require.ErrorIs(t, err, errs.ErrForbidden)

	require.ErrorIs(t, member.CheckTenant(nil), errs.ErrTenantIsolation)

	system := subjectWith(nil, tierRole(3, models.TierEkklesiaManager))
	require.NoError(t, system.CheckTenant(nil))
	require.ErrorIs(t, system.CheckTenant(uintPtr(5)), errs.ErrTenantIsolation)
}

func TestCheckTenantAdminExemption(t *testing.T) {
	for _, tier := range []models.RoleTier{models.TierSuperAdmin, models.TierEkklesiaAdmin} {
		for _, own := range []*uint{nil, uintPtr(1)} {
			sub := subjectWith(own, tierRole(1, tier))

			for _, target := range []*uint{nil, uintPtr(1), uintPtr(2), uintPtr(99)} {
				assert.NoError(t, sub.CheckTenant(target), "tier %s", tier)
			}
		}
	}
}

func TestScopeCreate(t *testing.T) {
	member := subjectWith(uintPtr(5), customRole(1))
	assert.Equal(t, uint(5), *member.ScopeCreate(uintPtr(7)))
	assert.Equal(t, uint(5), *member.ScopeCreate(nil))

	admin := subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin))
	assert.Equal(t, uint(7), *admin.ScopeCreate(uintPtr(7)))
	assert.Nil(t, admin.ScopeCreate(nil))
}

func TestCheckRoleAssignment(t *testing.T) {
	tenantRole := func(tenantID uint) *models.Role {
		r := customRole(20)
		r.TenantID = uintPtr(tenantID)

		return &r
	}

	global := func(tier models.RoleTier) *models.Role {
		r := tierRole(30, tier)

		return &r
	}

	tests := []struct {
		name    string
		actor   *auth.Subject
		role    *models.Role
		target  *uint
		wantErr error
	}{
		{"own tenant role", subjectWith(uintPtr(5), customRole(1)), tenantRole(5), uintPtr(5), nil},
		{"own tenant role to other tenant user", subjectWith(uintPtr(5), customRole(1)), tenantRole(5), uintPtr(7), errs.ErrValidation},
		{"own tenant role to global user", subjectWith(uintPtr(5), customRole(1)), tenantRole(5), nil, errs.ErrValidation},
		{"admin of tenant to other tenant user", subjectWith(uintPtr(5), tierRole(2, models.TierEkklesiaAdmin)), tenantRole(5), uintPtr(7), errs.ErrValidation},
		{"other tenant role", subjectWith(uintPtr(7), customRole(1)), tenantRole(5), uintPtr(5), errs.ErrValidation},
		{"other tenant role as super admin", subjectWith(uintPtr(1), tierRole(1, models.TierSuperAdmin)), tenantRole(5), uintPtr(5), errs.ErrValidation},
		{"tenant role without tenant", subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin)), tenantRole(5), uintPtr(5), errs.ErrValidation},
		{"super admin assigns super admin", subjectWith(nil, tierRole(1, models.TierSuperAdmin)), global(models.TierSuperAdmin), nil, nil},
		{"admin assigns admin", subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin)), global(models.TierEkklesiaAdmin), uintPtr(7), nil},
		{"admin assigns super admin", subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin)), global(models.TierSuperAdmin), nil, errs.ErrForbidden},
		{"manager assigns admin", subjectWith(nil, tierRole(3, models.TierEkklesiaManager)), global(models.TierEkklesiaAdmin), nil, errs.ErrForbidden},
		{"custom assigns user", subjectWith(uintPtr(5), customRole(1)), global(models.TierEkklesiaUser), uintPtr(5), nil},
		{"custom assigns manager", subjectWith(uintPtr(5), customRole(1)), global(models.TierEkklesiaManager), uintPtr(5), errs.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.CheckRoleAssignment(tt.role, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckRoleAssignmentMessage(t *testing.T) {
	r := customRole(20)
	r.TenantID = uintPtr(5)

	err := subjectWith(uintPtr(7), customRole(1)).CheckRoleAssignment(&r, uintPtr(5))

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, auth.MsgRoleOtherTenant, verr.Message)

	err = subjectWith(uintPtr(5), customRole(1)).CheckRoleAssignment(&r, uintPtr(7))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, auth.MsgRoleOtherTenant, verr.Message)
}

func TestCheckOutranks(t *testing.T) {
	root := subjectWith(nil, tierRole(1, models.TierSuperAdmin))
	admin := subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin))
	manager := subjectWith(uintPtr(5), tierRole(3, models.TierEkklesiaManager))
	reader := subjectWith(uintPtr(5), tierRole(4, models.TierEkklesiaUser))
	custom := subjectWith(uintPtr(5), customRole(1))

	assert.NoError(t, root.CheckOutranks(root))
	assert.NoError(t, root.CheckOutranks(admin))
	assert.NoError(t, admin.CheckOutranks(admin))
	assert.NoError(t, admin.CheckOutranks(custom))
	assert.NoError(t, custom.CheckOutranks(reader))
	assert.NoError(t, reader.CheckOutranks(custom))

	require.ErrorIs(t, admin.CheckOutranks(root), errs.ErrForbidden)
	require.ErrorIs(t, manager.CheckOutranks(admin), errs.ErrForbidden)
	require.ErrorIs(t, custom.CheckOutranks(manager), errs.ErrForbidden)
}

func TestScopes(t *testing.T) {
	f := setup(t)

	t5 := f.tenant(t, "St. Mary")
	t7 := f.tenant(t, "St. Joseph")

	f.tenantRole(t, t5, "Clerk")
	f.tenantRole(t, t7, "Clerk")
	f.user(t, "a@t5.test", uintPtr(t5))
	f.user(t, "b@t7.test", uintPtr(t7))

	member := subjectWith(uintPtr(t5), customRole(1))

	var users []models.User
	require.NoError(t, f.db.Scopes(member.Scope).Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "a@t5.test", users[0].Email)

	var roles []models.Role
	require.NoError(t, f.db.Scopes(member.SharedScope).Find(&roles).Error)

	for _, r := range roles {
		if r.TenantID != nil {
			assert.Equal(t, t5, *r.TenantID)
		}
	}

	assert.Len(t, roles, len(auth.GlobalRoles())+1)

	admin := subjectWith(nil, tierRole(2, models.TierEkklesiaAdmin))
	require.NoError(t, f.db.Scopes(admin.SharedScope).Find(&roles).Error)
	assert.Len(t, roles, len(auth.GlobalRoles())+2)
}
