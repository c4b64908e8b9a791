package models

import (
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserType tells how an account was created during tenant onboarding.
type UserType int

const (
	// UserTypeStandard is an ordinary account.
	UserTypeStandard UserType = 0
	// UserTypePrimaryContact is the tenant's primary contact, created at onboarding.
	UserTypePrimaryContact UserType = 1
	// UserTypeSecondaryContact is the tenant's secondary contact, created at onboarding.
	UserTypeSecondaryContact UserType = 2
)

// User represents a user account in the system.
// A user belongs to at most one tenant, holds a legacy single role plus any number of
// roles through role_user, and may be granted permissions directly.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the user's full name.
	Name string `gorm:"size:150;not null" json:"name"`
	// Email is unique across the whole system, not per tenant.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// ContactNumber is the user's phone number.
	ContactNumber string `gorm:"size:50" json:"contact_number"`
	// UserType is 1 for primary and 2 for secondary onboarding contacts.
	UserType UserType `gorm:"default:0" json:"user_type"`
	// RoleID is the legacy single role.
	RoleID *uint `gorm:"column:role_id;index" json:"role_id"`
	// Role is the associated legacy role.
	Role *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE" json:"role,omitempty"`
	// TenantID is the owning tenant. Nil only for system-level users.
	TenantID *uint `gorm:"index" json:"tenant_id"`
	// Tenant is the associated tenant.
	Tenant *Tenant `gorm:"foreignKey:TenantID;references:ID" json:"-"`
	// Active indicates whether the user account is active and can log in.
	Active bool `gorm:"default:true" json:"active"`
	// IsPrimaryAdmin marks the account created at tenant onboarding.
	// Only global administrators may deactivate or delete it.
	IsPrimaryAdmin bool `gorm:"default:false" json:"is_primary_admin"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt is the soft delete marker (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// It uses the default Argon2id parameters.
func HashPassword(password string) (string, error) {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hashedPassword, nil
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}
