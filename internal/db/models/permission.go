package models

import "time"

// Permission represents a named capability in the authorization system.
// Permissions are granted to roles or directly to users.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique permission slug in module.action format (e.g., "users.create").
	// Unique across the whole catalog, including tenant custom permissions.
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	// DisplayName is the human-readable label of the permission.
	DisplayName string `gorm:"size:150" json:"display_name"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// Module groups permissions by functional area (e.g., "users", "families").
	Module string `gorm:"size:50;index" json:"module"`
	// Category is a free-form grouping within a module (e.g., "management").
	Category string `gorm:"size:50" json:"category"`
	// TenantID scopes a custom permission to a tenant. Nil means a global permission.
	TenantID *uint `gorm:"index" json:"tenant_id"`
	// IsCustom marks permissions created by a tenant administrator.
	IsCustom bool `gorm:"default:false" json:"is_custom"`
	// Active permissions are the only ones that grant anything.
	Active bool `gorm:"default:true" json:"active"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}

// IsGlobal reports whether the permission is a system permission shared by all tenants.
func (p *Permission) IsGlobal() bool {
	return p.TenantID == nil
}
