// Package audit stores and queries the audit trail of authorization decisions.
package audit

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 100

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Filter narrows List. Zero values match everything.
type Filter struct {
	TenantID *uint
	ActorID  uint
	Outcome  models.AuditOutcome
	Limit    int
}

// Record appends an entry to the audit trail.
func Record(db *gorm.DB, entry *models.AuditLog) error {
	if db == nil {
		return ErrDBNil
	}

	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log %s: %w", entry.Action, err)
	}

	return nil
}

// List returns the newest entries first.
func List(db *gorm.DB, f Filter) ([]models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Model(&models.AuditLog{})

	if f.TenantID != nil {
		q = q.Where("tenant_id = ?", *f.TenantID)
	}

	if f.ActorID != 0 {
		q = q.Where("actor_id = ?", f.ActorID)
	}

	if f.Outcome != "" {
		q = q.Where("outcome = ?", f.Outcome)
	}

	limit := f.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	var out []models.AuditLog
	if err := q.Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return out, nil
}
