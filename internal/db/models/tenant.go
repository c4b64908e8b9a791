package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents a parish or diocese. Users, custom roles and custom permissions
// are scoped to a tenant and must not leak across tenant boundaries.
type Tenant struct {
	// ID is the unique identifier for the tenant.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name of the tenant.
	Name string `gorm:"size:150;not null" json:"name"`
	// Address is the postal address of the tenant.
	Address string `gorm:"size:255" json:"address"`
	// Active indicates whether the tenant is in service.
	Active bool `gorm:"default:true" json:"active"`
	// CreatedAt is the timestamp when the tenant was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the tenant was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt is the soft delete marker (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the database table name for the Tenant model.
func (Tenant) TableName() string {
	return "tenants"
}
