package models

import (
	"time"

	"gorm.io/gorm"
)

// RoleTier identifies the privilege tier of a role independently of its display name.
type RoleTier string

const (
	// TierSuperAdmin bypasses every permission check.
	TierSuperAdmin RoleTier = "super_admin"
	// TierEkklesiaAdmin is the global administrator tier.
	TierEkklesiaAdmin RoleTier = "ekklesia_admin"
	// TierEkklesiaManager is the global manager tier.
	TierEkklesiaManager RoleTier = "ekklesia_manager"
	// TierEkklesiaUser is the global read-mostly tier.
	TierEkklesiaUser RoleTier = "ekklesia_user"
	// TierCustom is used by every tenant-created role.
	TierCustom RoleTier = "custom"
)

// Level returns the numeric tier level, 1 being the most privileged.
// Custom roles have no meaningful level and report 0.
func (t RoleTier) Level() int {
	switch t {
	case TierSuperAdmin:
		return 1
	case TierEkklesiaAdmin:
		return 2 //nolint:mnd
	case TierEkklesiaManager:
		return 3 //nolint:mnd
	case TierEkklesiaUser:
		return 4 //nolint:mnd
	default:
		return 0
	}
}

// Valid reports whether t is one of the known tiers.
func (t RoleTier) Valid() bool {
	return t == TierCustom || t.Level() > 0
}

// Role represents a named bundle of permissions.
// A role is either a global system role (no tenant, not custom) or a tenant custom role.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name of the role, unique per tenant.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_name_tenant" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description"`
	// Level is the numeric tier (1 = SuperAdmin .. 4 = EkklesiaUser); 0 for custom roles.
	Level int `gorm:"default:0" json:"level"`
	// Tier is the privilege tier. Tier checks never look at Name.
	Tier RoleTier `gorm:"type:varchar(32);not null;default:'custom'" json:"tier"`
	// Active roles are the only ones that grant permissions.
	Active bool `gorm:"default:true" json:"active"`
	// TenantID is the owning tenant. Nil for global roles.
	TenantID *uint `gorm:"index" json:"tenant_id"`
	// TenantScope is TenantID coalesced to 0, so global roles share one uniqueness bucket.
	TenantScope uint `gorm:"not null;default:0;uniqueIndex:idx_roles_name_tenant" json:"-"`
	// IsCustom marks roles created by tenants.
	IsCustom bool `gorm:"default:false" json:"is_custom"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt is the soft delete marker (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// BeforeSave keeps TenantScope in sync with TenantID.
func (r *Role) BeforeSave(_ *gorm.DB) error {
	r.TenantScope = 0
	if r.TenantID != nil {
		r.TenantScope = *r.TenantID
	}

	return nil
}

// IsGlobal reports whether the role is a global system role.
func (r *Role) IsGlobal() bool {
	return r.TenantID == nil && !r.IsCustom
}

// IsSuperAdmin reports whether the role is of the SuperAdmin tier.
func (r *Role) IsSuperAdmin() bool {
	return r.Tier == TierSuperAdmin
}

// IsEkklesiaAdmin reports whether the role is of the EkklesiaAdmin tier.
func (r *Role) IsEkklesiaAdmin() bool {
	return r.Tier == TierEkklesiaAdmin
}

// IsEkklesiaManager reports whether the role is of the EkklesiaManager tier.
func (r *Role) IsEkklesiaManager() bool {
	return r.Tier == TierEkklesiaManager
}
