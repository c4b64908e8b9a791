package daemon

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/secret"
)

const defaultSuperAdminName = "Super Admin"

// ErrNoSeedEmail is returned when the database has no users and no SuperAdmin email is configured.
var ErrNoSeedEmail = errors.New("no users exist and seed.superadminemail is not set")

// Seed registers the permission catalog and global roles, then creates the configured
// SuperAdmin when the users table is empty. Running it again changes nothing.
func Seed(ctx context.Context, authService *auth.Service, cfg *config.Config) error {
	if err := authService.EnsureCatalog(ctx); err != nil {
		return err
	}

	db := authService.DB(ctx)

	count, err := user.Count(db)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	if cfg.Seed.SuperAdminEmail == "" {
		return ErrNoSeedEmail
	}

	r, err := role.FindByTier(db, models.TierSuperAdmin)
	if err != nil {
		return err
	}

	name := cfg.Seed.SuperAdminName
	if name == "" {
		name = defaultSuperAdminName
	}

	password := cfg.Seed.SuperAdminPassword
	generated := password == ""

	if generated {
		if password, err = secret.Password(); err != nil {
			return err
		}
	}

	u, err := user.Create(db, user.Input{
		Name:     name,
		Email:    cfg.Seed.SuperAdminEmail,
		Password: password,
		RoleID:   &r.ID,
	})
	if err != nil {
		return err
	}

	ev := log.Warn().Uint("user_id", u.ID).Str("email", u.Email)
	if generated {
		ev = ev.Str("password", password)
	}

	ev.Msg("super admin created, change its password after the first login")

	return nil
}
