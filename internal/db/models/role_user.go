package models

// RoleUser represents the many-to-many relationship between users and roles.
// A user may hold several roles at once; deleting either side removes the row (CASCADE).
type RoleUser struct {
	// RoleID is the ID of the role in this membership.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false"`
	// UserID is the ID of the user in this membership.
	UserID uint `gorm:"primaryKey;column:user_id;autoIncrement:false;index"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RoleUser model.
func (RoleUser) TableName() string {
	return "role_user"
}
