// Package role provides persistence operations for roles and their permission sets.
package role

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/sanitize"
)

const entity = "role"

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Input holds the fields of a role to create.
// A role with a TenantID is always a custom role; a global role needs a non-custom Tier.
type Input struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"max=255"`
	Tier        models.RoleTier `json:"tier"`
	TenantID    *uint           `json:"tenant_id"`
}

// Create inserts a new role. (Name, tenant) is unique, global roles sharing one bucket.
// Soft-deleted roles keep their name reserved.
func Create(db *gorm.DB, in Input) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Invalid("name", "role name cannot be empty")
	}

	tier := in.Tier
	if tier == "" {
		tier = models.TierCustom
	}

	if !tier.Valid() {
		return nil, errs.Invalid("tier", fmt.Sprintf("unknown role tier %q", tier))
	}

	if in.TenantID != nil && tier != models.TierCustom {
		return nil, errs.Invalid("tier", "tenant roles must use the custom tier")
	}

	var scope uint
	if in.TenantID != nil {
		scope = *in.TenantID
	}

	var count int64
	if err := db.Unscoped().Model(&models.Role{}).
		Where("name = ? AND tenant_scope = ?", name, scope).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	}

	if count > 0 {
		return nil, errs.Duplicate(entity, name)
	}

	r := &models.Role{
		Name:        name,
		Description: sanitize.Text(in.Description),
		Level:       tier.Level(),
		Tier:        tier,
		Active:      true,
		TenantID:    in.TenantID,
		IsCustom:    tier == models.TierCustom,
	}

	if err := db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Duplicate(entity, name)
		}

		return nil, fmt.Errorf("failed to create role %q: %w", name, err)
	}

	return r, nil
}

// Get returns a live role by id.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	err := db.First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find role %d: %w", id, err)
	}

	return &r, nil
}

// FindByName returns a live role by name within a tenant, or among global roles for a nil tenantID.
func FindByName(db *gorm.DB, name string, tenantID *uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var scope uint
	if tenantID != nil {
		scope = *tenantID
	}

	var r models.Role

	err := db.Where("name = ? AND tenant_scope = ?", name, scope).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find role %q: %w", name, err)
	}

	return &r, nil
}

// FindByTier returns the global role of the given tier.
func FindByTier(db *gorm.DB, tier models.RoleTier) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	err := db.Where("tier = ? AND tenant_id IS NULL", tier).Order("id").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, tier)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find role tier %s: %w", tier, err)
	}

	return &r, nil
}

// List returns live roles, narrowed by the given scopes.
func List(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Role
	if err := db.Scopes(scopes...).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return out, nil
}

// SetActive toggles the active flag of a role.
func SetActive(db *gorm.DB, id uint, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Role{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update role %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

// Activate marks a role active.
func Activate(db *gorm.DB, id uint) error {
	return SetActive(db, id, true)
}

// Deactivate marks a role inactive. Inactive roles grant nothing.
func Deactivate(db *gorm.DB, id uint) error {
	return SetActive(db, id, false)
}

// Delete soft-deletes a role. Its grants stay in place for history.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Delete(&models.Role{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete role %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

// Grant adds a permission to a role. Granting twice is a no-op.
func Grant(db *gorm.DB, roleID uint, ref permission.Ref) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, roleID); err != nil {
		return err
	}

	p, err := permission.Resolve(db, ref)
	if err != nil {
		return err
	}

	return insertGrants(db, roleID, []models.Permission{*p})
}

// Revoke removes a permission from a role. Revoking an absent grant is a no-op.
func Revoke(db *gorm.DB, roleID uint, ref permission.Ref) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, roleID); err != nil {
		return err
	}

	p, err := permission.Resolve(db, ref)
	if err != nil {
		return err
	}

	if err = db.Where("role_id = ? AND permission_id = ?", roleID, p.ID).
		Delete(&models.PermissionRole{}).Error; err != nil {
		return fmt.Errorf("failed to revoke %s from role %d: %w", p.Name, roleID, err)
	}

	return nil
}

// SyncPermissions replaces the permission set of a role in one transaction:
// every grant is removed, then refs are granted. An empty refs clears the role.
// Concurrent syncs on one role are not serialised; the last commit wins.
func SyncPermissions(db *gorm.DB, roleID uint, refs []permission.Ref) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, roleID); err != nil {
			return err
		}

		perms, err := permission.ResolveAll(tx, refs)
		if err != nil {
			return err
		}

		if err = tx.Where("role_id = ?", roleID).Delete(&models.PermissionRole{}).Error; err != nil {
			return fmt.Errorf("failed to detach permissions of role %d: %w", roleID, err)
		}

		return insertGrants(tx, roleID, perms)
	})
}

// HasPermission reports whether the role's current permission set contains ref.
// A permission name that does not exist is simply not held.
func HasPermission(db *gorm.DB, roleID uint, ref permission.Ref) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	q := db.Model(&models.PermissionRole{}).Where("permission_role.role_id = ?", roleID)

	switch {
	case ref.ID() != 0:
		q = q.Where("permission_role.permission_id = ?", ref.ID())
	case ref.Name() != "":
		q = q.Joins("JOIN permissions ON permissions.id = permission_role.permission_id").
			Where("permissions.name = ?", ref.Name())
	default:
		return false, errs.Invalid("permission", "empty permission reference")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check permission %s of role %d: %w", ref, roleID, err)
	}

	return count > 0, nil
}

// Permissions returns the permissions granted to a role, ordered by name.
func Permissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Permission

	err := db.Model(&models.Permission{}).
		Joins("JOIN permission_role ON permission_role.permission_id = permissions.id").
		Where("permission_role.role_id = ?", roleID).
		Order("permissions.name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions of role %d: %w", roleID, err)
	}

	return out, nil
}

func insertGrants(db *gorm.DB, roleID uint, perms []models.Permission) error {
	if len(perms) == 0 {
		return nil
	}

	rows := make([]models.PermissionRole, 0, len(perms))
	for i := range perms {
		rows = append(rows, models.PermissionRole{PermissionID: perms[i].ID, RoleID: roleID})
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to grant permissions to role %d: %w", roleID, err)
	}

	return nil
}
