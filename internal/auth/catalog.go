package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// EnsureCatalog registers missing system permissions and global roles. Existing rows
// are left alone, so grants changed by a SuperAdmin survive restarts; a role is granted
// its defaults only when it is first created.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	return s.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range SystemPermissions() {
			_, err := permission.FindByName(tx, in.Name)
			if err == nil {
				continue
			}

			if !errors.Is(err, errs.ErrNotFound) {
				return err
			}

			if _, err = permission.Register(tx, in); err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", in.Name, err)
			}
		}

		for _, gr := range GlobalRoles() {
			_, err := role.FindByTier(tx, gr.Tier)
			if err == nil {
				continue
			}

			if !errors.Is(err, errs.ErrNotFound) {
				return err
			}

			r, err := role.Create(tx, role.Input{Name: gr.Name, Description: gr.Description, Tier: gr.Tier})
			if err != nil {
				return fmt.Errorf("failed to seed role %s: %w", gr.Name, err)
			}

			if err = role.SyncPermissions(tx, r.ID, permission.Refs(DefaultGrants(gr.Tier)...)); err != nil {
				return fmt.Errorf("failed to seed grants of role %s: %w", gr.Name, err)
			}
		}

		return nil
	})
}
