// Package permission is the permission registry: the catalog of named capabilities.
package permission

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/sanitize"
)

const (
	nameQueryPattern = "name = ?"
	entity           = "permission"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Input holds the fields of a permission to register.
// A non-nil TenantID registers a tenant custom permission.
type Input struct {
	Name        string `json:"name"         validate:"required,max=100"`
	DisplayName string `json:"display_name" validate:"max=150"`
	Description string `json:"description"  validate:"max=255"`
	Module      string `json:"module"       validate:"max=50"`
	Category    string `json:"category"     validate:"max=50"`
	TenantID    *uint  `json:"tenant_id"`
}

// Register adds a permission to the catalog.
// Names are unique across the whole catalog, global and custom alike.
func Register(db *gorm.DB, in Input) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Invalid("name", "permission name cannot be empty")
	}

	var count int64
	if err := db.Model(&models.Permission{}).Where(nameQueryPattern, name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check permission name: %w", err)
	}

	if count > 0 {
		return nil, errs.Duplicate(entity, name)
	}

	module := in.Module
	if module == "" {
		module, _, _ = strings.Cut(name, ".")
	}

	p := &models.Permission{
		Name:        name,
		DisplayName: sanitize.Text(in.DisplayName),
		Description: sanitize.Text(in.Description),
		Module:      module,
		Category:    in.Category,
		TenantID:    in.TenantID,
		IsCustom:    in.TenantID != nil,
		Active:      true,
	}

	if err := db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Duplicate(entity, name)
		}

		return nil, fmt.Errorf("failed to create permission %q: %w", name, err)
	}

	return p, nil
}

// FindByName returns the permission with the given name.
func FindByName(db *gorm.DB, name string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Permission

	err := db.Where(nameQueryPattern, name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find permission %q: %w", name, err)
	}

	return &p, nil
}

// FindByID returns the permission with the given id.
func FindByID(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Permission

	err := db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find permission %d: %w", id, err)
	}

	return &p, nil
}

// Resolve loads the permission a Ref points to.
func Resolve(db *gorm.DB, ref Ref) (*models.Permission, error) {
	switch {
	case ref.id != 0:
		return FindByID(db, ref.id)
	case ref.name != "":
		return FindByName(db, ref.name)
	default:
		return nil, errs.Invalid("permission", "empty permission reference")
	}
}

// ResolveAll resolves refs, dropping duplicates. The first unknown ref fails the call.
func ResolveAll(db *gorm.DB, refs []Ref) ([]models.Permission, error) {
	out := make([]models.Permission, 0, len(refs))
	seen := make(map[uint]struct{}, len(refs))

	for _, ref := range refs {
		p, err := Resolve(db, ref)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[p.ID]; dup {
			continue
		}

		seen[p.ID] = struct{}{}
		out = append(out, *p)
	}

	return out, nil
}

// ListActive returns the active global permissions plus the active custom permissions
// of tenantID, ordered by name. A nil tenantID returns global permissions only.
func ListActive(db *gorm.DB, tenantID *uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Where("active = ?", true)

	if tenantID != nil {
		q = q.Where("(tenant_id IS NULL OR tenant_id = ?)", *tenantID)
	} else {
		q = q.Where("tenant_id IS NULL")
	}

	var out []models.Permission
	if err := q.Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return out, nil
}

// GetAll returns the whole catalog, including inactive and every tenant's custom permissions.
func GetAll(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Permission
	if err := db.Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return out, nil
}

// SetActive toggles the active flag of a permission.
func SetActive(db *gorm.DB, id uint, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Permission{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update permission %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}

// DeleteCustom removes a custom permission that no role or user holds.
// System permissions are never deleted.
func DeleteCustom(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		p, err := FindByID(tx, id)
		if err != nil {
			return err
		}

		if !p.IsCustom {
			return errs.Invalid("permission", "system permissions cannot be deleted")
		}

		var roles, users int64
		if err = tx.Model(&models.PermissionRole{}).Where("permission_id = ?", id).Count(&roles).Error; err != nil {
			return fmt.Errorf("failed to count role grants: %w", err)
		}

		if err = tx.Model(&models.PermissionUser{}).Where("permission_id = ?", id).Count(&users).Error; err != nil {
			return fmt.Errorf("failed to count user grants: %w", err)
		}

		if roles+users > 0 {
			return errs.Invalid("permission", fmt.Sprintf("permission %q is still in use", p.Name))
		}

		if err = tx.Delete(&models.Permission{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete permission %d: %w", id, err)
		}

		return nil
	})
}

// Names returns the names of ps, sorted.
func Names(ps []models.Permission) []string {
	out := make([]string, 0, len(ps))
	for i := range ps {
		out = append(out, ps[i].Name)
	}

	sort.Strings(out)

	return out
}
