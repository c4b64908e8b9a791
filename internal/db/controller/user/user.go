// Package user provides persistence operations for user accounts, their role
// memberships and their direct permission grants.
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

const (
	entity      = "user"
	whereUserID = "user_id = ?"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Input holds the fields of a user to create.
type Input struct {
	Name           string          `json:"name"           validate:"required,max=150"`
	Email          string          `json:"email"          validate:"required,email,max=255"`
	Password       string          `json:"password"       validate:"required,min=8,max=128"`
	ContactNumber  string          `json:"contact_number" validate:"max=50"`
	UserType       models.UserType `json:"user_type"      validate:"gte=0,lte=2"`
	TenantID       *uint           `json:"tenant_id"`
	RoleID         *uint           `json:"role_id"`
	Inactive       bool            `json:"inactive"`
	IsPrimaryAdmin bool            `json:"-"`
}

// NormalizeEmail trims and lower-cases an address; uniqueness is checked on the result.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user, hashing the password. Email is unique across all tenants,
// soft-deleted accounts included. A RoleID becomes both the legacy role and a role_user row.
func Create(db *gorm.DB, in Input) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	email := NormalizeEmail(in.Email)

	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, errs.Invalid("name", "name cannot be empty")
	case email == "":
		return nil, errs.Invalid("email", "email cannot be empty")
	case in.Password == "":
		return nil, errs.Invalid("password", "password cannot be empty")
	}

	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Password:       hash,
		ContactNumber:  in.ContactNumber,
		UserType:       in.UserType,
		RoleID:         in.RoleID,
		TenantID:       in.TenantID,
		Active:         true,
		IsPrimaryAdmin: in.IsPrimaryAdmin,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if errC := tx.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; errC != nil {
			return fmt.Errorf("failed to check email: %w", errC)
		}

		if count > 0 {
			return errs.Duplicate(entity, email)
		}

		if in.RoleID != nil {
			var roles int64
			if errC := tx.Model(&models.Role{}).Where("id = ?", *in.RoleID).Count(&roles).Error; errC != nil {
				return fmt.Errorf("failed to check role: %w", errC)
			}

			if roles == 0 {
				return errs.NotFound("role", *in.RoleID)
			}
		}

		if errC := tx.Create(u).Error; errC != nil {
			if errors.Is(errC, gorm.ErrDuplicatedKey) {
				return errs.Duplicate(entity, email)
			}

			return fmt.Errorf("failed to create user %s: %w", email, errC)
		}

		if in.Inactive {
			if errC := tx.Model(u).Update("active", false).Error; errC != nil {
				return fmt.Errorf("failed to deactivate user %d: %w", u.ID, errC)
			}
		}

		if in.RoleID != nil {
			if errC := tx.Create(&models.RoleUser{RoleID: *in.RoleID, UserID: u.ID}).Error; errC != nil {
				return fmt.Errorf("failed to attach role %d: %w", *in.RoleID, errC)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}

// Get returns a live user by id with its legacy role loaded.
func Get(db *gorm.DB, id uint) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	err := db.Preload("Role").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user %d: %w", id, err)
	}

	return &u, nil
}

// GetByEmail returns a live user by email.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	email = NormalizeEmail(email)

	var u models.User

	err := db.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, email)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", email, err)
	}

	return &u, nil
}

// List returns live users, narrowed by the given scopes.
func List(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.User
	if err := db.Scopes(scopes...).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return out, nil
}

// Count returns the number of live users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return n, nil
}

// Roles returns the user's live roles: the legacy role plus every role_user membership,
// without duplicates. Inactive roles are included; callers decide what they grant.
func Roles(db *gorm.DB, userID uint) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Role

	err := db.Model(&models.Role{}).
		Where("(id IN (?) OR id IN (?))",
			db.Model(&models.RoleUser{}).Select("role_id").Where(whereUserID, userID),
			db.Model(&models.User{}).Select("role_id").Where("id = ? AND role_id IS NOT NULL", userID),
		).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load roles of user %d: %w", userID, err)
	}

	return out, nil
}

// SyncRoles replaces the user's role memberships in one transaction. The legacy
// role_id follows the first role, or is cleared for an empty set.
// Concurrent syncs on one user are not serialised; the last commit wins.
func SyncRoles(db *gorm.DB, userID uint, roleIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	roleIDs = dedup(roleIDs)

	return db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Select("id").First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound(entity, userID)
			}

			return fmt.Errorf("failed to find user %d: %w", userID, err)
		}

		if len(roleIDs) > 0 {
			var found int64
			if err := tx.Model(&models.Role{}).Where("id IN ?", roleIDs).Count(&found).Error; err != nil {
				return fmt.Errorf("failed to check roles: %w", err)
			}

			if int(found) != len(roleIDs) {
				return errs.NotFound("role", roleIDs)
			}
		}

		if err := tx.Where(whereUserID, userID).Delete(&models.RoleUser{}).Error; err != nil {
			return fmt.Errorf("failed to detach roles of user %d: %w", userID, err)
		}

		var legacy *uint

		if len(roleIDs) > 0 {
			rows := make([]models.RoleUser, 0, len(roleIDs))
			for _, id := range roleIDs {
				rows = append(rows, models.RoleUser{RoleID: id, UserID: userID})
			}

			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to attach roles to user %d: %w", userID, err)
			}

			legacy = &roleIDs[0]
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("role_id", legacy).Error; err != nil {
			return fmt.Errorf("failed to set legacy role of user %d: %w", userID, err)
		}

		return nil
	})
}

// GivePermissionTo grants a permission directly to a user. Granting twice is a no-op.
func GivePermissionTo(db *gorm.DB, userID uint, ref permission.Ref) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, userID); err != nil {
		return err
	}

	p, err := permission.Resolve(db, ref)
	if err != nil {
		return err
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PermissionUser{PermissionID: p.ID, UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("failed to give %s to user %d: %w", p.Name, userID, err)
	}

	return nil
}

// RevokePermissionTo removes a direct grant. Permissions held through roles are untouched.
func RevokePermissionTo(db *gorm.DB, userID uint, ref permission.Ref) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, userID); err != nil {
		return err
	}

	p, err := permission.Resolve(db, ref)
	if err != nil {
		return err
	}

	if err = db.Where("user_id = ? AND permission_id = ?", userID, p.ID).
		Delete(&models.PermissionUser{}).Error; err != nil {
		return fmt.Errorf("failed to revoke %s from user %d: %w", p.Name, userID, err)
	}

	return nil
}

// DirectPermissions returns the permissions granted straight to a user, ordered by name.
func DirectPermissions(db *gorm.DB, userID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Permission

	err := db.Model(&models.Permission{}).
		Joins("JOIN permission_user ON permission_user.permission_id = permissions.id").
		Where("permission_user.user_id = ?", userID).
		Order("permissions.name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load direct permissions of user %d: %w", userID, err)
	}

	return out, nil
}

// SetActive toggles the active flag of a user.
func SetActive(db *gorm.DB, id uint, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.User{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

// SetPassword stores a new password hash for the user.
func SetPassword(db *gorm.DB, id uint, password string) error {
	if db == nil {
		return ErrDBNil
	}

	if password == "" {
		return errs.Invalid("password", "password cannot be empty")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return err
	}

	res := db.Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password of user %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

// Delete soft-deletes a user. The email stays reserved.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

func dedup(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
