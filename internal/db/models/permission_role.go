package models

import "time"

// PermissionRole represents the many-to-many relationship between roles and permissions.
// When a role or permission is deleted, the assignment is removed (CASCADE).
type PermissionRole struct {
	// PermissionID is the ID of the granted permission.
	PermissionID uint `gorm:"primaryKey;column:permission_id;autoIncrement:false"`
	// RoleID is the ID of the role holding the permission.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false;index"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the grant was made (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last touched (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the PermissionRole model.
func (PermissionRole) TableName() string {
	return "permission_role"
}
