package models

import "time"

// PermissionUser is a permission granted directly to a user, bypassing roles.
type PermissionUser struct {
	// PermissionID is the ID of the granted permission.
	PermissionID uint `gorm:"primaryKey;column:permission_id;autoIncrement:false"`
	// UserID is the ID of the user holding the grant.
	UserID uint `gorm:"primaryKey;column:user_id;autoIncrement:false;index"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the grant was made (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last touched (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the PermissionUser model.
func (PermissionUser) TableName() string {
	return "permission_user"
}
