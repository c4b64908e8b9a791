package auth

import (
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// levelWithoutTier is the tier level a user holding only custom roles ranks at.
const levelWithoutTier = 4

// MsgRoleOtherTenant is the message of the role-assignment validation failure.
const MsgRoleOtherTenant = "role does not belong to your tenant"

func sameTenant(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

// CheckTenant allows access to an entity owned by target when the subject is a
// global administrator or belongs to the same tenant.
func (s *Subject) CheckTenant(target *uint) error {
	if s.IsAdmin() || sameTenant(s.TenantID(), target) {
		return nil
	}

	return errs.Isolation(s.TenantID(), target)
}

// ScopeCreate returns the tenant a new entity must belong to. Client input is only
// honoured for global administrators; everyone else creates inside their own tenant.
func (s *Subject) ScopeCreate(requested *uint) *uint {
	if s.IsAdmin() && requested != nil {
		id := *requested

		return &id
	}

	if s.TenantID() == nil {
		return nil
	}

	id := *s.TenantID()

	return &id
}

// CheckRoleAssignment validates that r may be handed out by the subject to a user of
// targetTenant. A tenant role must belong to both the subject's own tenant and the
// target's tenant, whatever the subject's tier. A global role must not outrank the
// subject's own tier.
func (s *Subject) CheckRoleAssignment(r *models.Role, targetTenant *uint) error {
	if r.TenantID != nil {
		if !sameTenant(s.TenantID(), r.TenantID) || !sameTenant(targetTenant, r.TenantID) {
			return errs.Invalid("role_ids", MsgRoleOtherTenant)
		}

		return nil
	}

	if s.IsSuperAdmin() {
		return nil
	}

	if r.Tier.Level() > 0 && r.Tier.Level() < s.effectiveLevel() {
		return errs.Forbidden("cannot assign role " + r.Name + " above your own tier")
	}

	return nil
}

// effectiveLevel is TierLevel with custom-only users ranked as the lowest global tier.
func (s *Subject) effectiveLevel() int {
	if level := s.TierLevel(); level > 0 {
		return level
	}

	return levelWithoutTier
}

// CheckOutranks rejects acting on target when target holds a more privileged tier
// than the subject. SuperAdmin may act on anyone.
func (s *Subject) CheckOutranks(target *Subject) error {
	if s.IsSuperAdmin() {
		return nil
	}

	if target.effectiveLevel() < s.effectiveLevel() {
		return errs.Forbidden("cannot change a user above your own tier")
	}

	return nil
}

// Scope narrows a query on a tenant-scoped table to the subject's tenant.
// Global administrators see every row.
func (s *Subject) Scope(db *gorm.DB) *gorm.DB {
	if s.IsAdmin() {
		return db
	}

	if s.TenantID() == nil {
		return db.Where("tenant_id IS NULL")
	}

	return db.Where("tenant_id = ?", *s.TenantID())
}

// SharedScope is Scope for tables mixing global rows with tenant rows (roles, permissions):
// global rows stay visible to everyone.
func (s *Subject) SharedScope(db *gorm.DB) *gorm.DB {
	if s.IsAdmin() {
		return db
	}

	if s.TenantID() == nil {
		return db.Where("tenant_id IS NULL")
	}

	return db.Where("(tenant_id IS NULL OR tenant_id = ?)", *s.TenantID())
}
