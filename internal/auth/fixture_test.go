package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/tenant"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dbtest"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

const password = "correct horse battery"

func uintPtr(v uint) *uint { return &v }

type fixture struct {
	db  *gorm.DB
	svc *auth.Service
	ctx context.Context
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := dbtest.New(t)
	svc := auth.NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.EnsureCatalog(ctx))

	return fixture{db: db, svc: svc, ctx: ctx}
}

func (f fixture) tenant(t *testing.T, name string) uint {
	t.Helper()

	tn, err := tenant.Create(f.db, name, "")
	require.NoError(t, err)

	return tn.ID
}

func (f fixture) globalRole(t *testing.T, tier models.RoleTier) uint {
	t.Helper()

	r, err := role.FindByTier(f.db, tier)
	require.NoError(t, err)

	return r.ID
}

// tenantRole creates a custom role in tenantID holding perms.
func (f fixture) tenantRole(t *testing.T, tenantID uint, name string, perms ...string) uint {
	t.Helper()

	r, err := role.Create(f.db, role.Input{Name: name, TenantID: uintPtr(tenantID)})
	require.NoError(t, err)
	require.NoError(t, role.SyncPermissions(f.db, r.ID, permission.Refs(perms...)))

	return r.ID
}

// user creates a user holding roleIDs; the first one also becomes the legacy role.
func (f fixture) user(t *testing.T, email string, tenantID *uint, roleIDs ...uint) *models.User {
	t.Helper()

	in := user.Input{Name: email, Email: email, Password: password, TenantID: tenantID}
	if len(roleIDs) > 0 {
		in.RoleID = uintPtr(roleIDs[0])
	}

	u, err := user.Create(f.db, in)
	require.NoError(t, err)

	if len(roleIDs) > 1 {
		require.NoError(t, user.SyncRoles(f.db, u.ID, roleIDs))
	}

	return u
}

func (f fixture) subject(t *testing.T, userID uint) *auth.Subject {
	t.Helper()

	sub, err := f.svc.Subject(f.ctx, userID)
	require.NoError(t, err)

	return sub
}

func (f fixture) superAdmin(t *testing.T) *auth.Subject {
	t.Helper()

	u := f.user(t, "root@ekklesia.test", nil, f.globalRole(t, models.TierSuperAdmin))

	return f.subject(t, u.ID)
}

// tenantAdmin returns a subject holding the onboarding Administrator role of tenantID.
func (f fixture) tenantAdmin(t *testing.T, tenantID uint, email string) *auth.Subject {
	t.Helper()

	r, err := role.FindByName(f.db, "Administrator", uintPtr(tenantID))
	if err != nil {
		r = &models.Role{ID: f.tenantRole(t, tenantID, "Administrator", auth.TenantAdminPermissions()...)}
	}

	u := f.user(t, email, uintPtr(tenantID), r.ID)

	return f.subject(t, u.ID)
}
