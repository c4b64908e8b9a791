package auth

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// MinPasswordLength is the shortest password accepted on change.
const MinPasswordLength = 8

var (
	absentOnce sync.Once
	absentUser models.User
)

// verifyAbsent runs a full password compare for an email that has no account,
// so unknown and known emails cost the same.
func verifyAbsent(password string) {
	absentOnce.Do(func() {
		hash, err := models.HashPassword("no account behind this hash")
		if err == nil {
			absentUser.Password = hash
		}
	})

	_ = absentUser.VerifyPassword(password)
}

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate checks an email and password against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := user.GetByEmail(p.db.WithContext(ctx), email)
	if errors.Is(err, errs.ErrNotFound) {
		verifyAbsent(password)

		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	if !u.Active {
		return nil, ErrUserAccountDisabled
	}

	if !u.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return u, nil
}

// ChangePassword replaces the password of a user after checking the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	db := p.db.WithContext(ctx)

	u, err := user.Get(db, userID)
	if err != nil {
		return err
	}

	if !u.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	if len(newPassword) < MinPasswordLength {
		return errs.Invalid("new_password", "password must be at least 8 characters")
	}

	return user.SetPassword(db, userID, newPassword)
}

// Local returns a LocalProvider on the service's database.
func (s *Service) Local() *LocalProvider {
	return NewLocalProvider(s.db)
}
