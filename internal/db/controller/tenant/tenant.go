// Package tenant provides CRUD operations for tenants (parishes and dioceses).
package tenant

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/sanitize"
)

const entity = "tenant"

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Create inserts a tenant.
func Create(db *gorm.DB, name, address string) (*models.Tenant, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = sanitize.Text(name)
	if name == "" {
		return nil, errs.Invalid("name", "tenant name cannot be empty")
	}

	t := &models.Tenant{
		Name:    name,
		Address: sanitize.Text(address),
		Active:  true,
	}

	if err := db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to create tenant %q: %w", name, err)
	}

	return t, nil
}

// Get retrieves a live tenant by id.
func Get(db *gorm.DB, id uint) (*models.Tenant, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var t models.Tenant

	err := db.First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound(entity, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find tenant %d: %w", id, err)
	}

	return &t, nil
}

// GetAll retrieves all live tenants, narrowed by the given scopes.
func GetAll(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Tenant, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.Tenant
	if err := db.Scopes(scopes...).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return out, nil
}

// Exists reports whether a live tenant with the given name exists, ignoring case.
func Exists(db *gorm.DB, name string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Tenant{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check tenant name: %w", err)
	}

	return count > 0, nil
}

// SetActive toggles the active flag of a tenant.
func SetActive(db *gorm.DB, id uint, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Tenant{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update tenant %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound(entity, id)
	}

	return nil
}
