package auth

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

// Service provides authorization functionality on top of the database.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	if db == nil {
		panic("db cannot be nil")
	}

	return &Service{db: db}
}

// DB returns the service's database handle bound to ctx.
func (s *Service) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Subject loads the user with its effective roles (legacy role and role_user memberships)
// and the permissions they grant. Errors are returned as is; NotFoundError for unknown users.
func (s *Service) Subject(ctx context.Context, userID uint) (*Subject, error) {
	db := s.DB(ctx)

	u, err := user.Get(db, userID)
	if err != nil {
		return nil, err
	}

	roles, err := user.Roles(db, userID)
	if err != nil {
		return nil, err
	}

	direct, err := user.DirectPermissions(db, userID)
	if err != nil {
		return nil, err
	}

	activeRoles := make([]uint, 0, len(roles))
	for i := range roles {
		if roles[i].Active {
			activeRoles = append(activeRoles, roles[i].ID)
		}
	}

	var viaRoles []models.Permission

	if len(activeRoles) > 0 {
		err = db.Model(&models.Permission{}).
			Joins("JOIN permission_role ON permission_role.permission_id = permissions.id").
			Where("permission_role.role_id IN ?", activeRoles).
			Find(&viaRoles).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load role permissions of user %d: %w", userID, err)
		}
	}

	return NewSubject(*u, roles, direct, viaRoles), nil
}

// HasPermission checks whether a user holds a permission.
// A lookup failure is returned as an error, never as false.
func (s *Service) HasPermission(ctx context.Context, userID uint, ref permission.Ref) (bool, error) {
	sub, err := s.Subject(ctx, userID)
	if err != nil {
		return false, err
	}

	return sub.HasPermissionTo(ref), nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID uint, refs ...permission.Ref) (bool, error) {
	if len(refs) == 0 {
		return false, nil
	}

	sub, err := s.Subject(ctx, userID)
	if err != nil {
		return false, err
	}

	return sub.HasAnyPermission(refs...), nil
}

// HasAllPermissions checks if a user has all of the given permissions.
func (s *Service) HasAllPermissions(ctx context.Context, userID uint, refs ...permission.Ref) (bool, error) {
	if len(refs) == 0 {
		return true, nil
	}

	sub, err := s.Subject(ctx, userID)
	if err != nil {
		return false, err
	}

	return sub.HasAllPermissions(refs...), nil
}

// GetUserPermissions returns the names of every permission a user holds, sorted.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint) ([]string, error) {
	sub, err := s.Subject(ctx, userID)
	if err != nil {
		return nil, err
	}

	return sub.PermissionNames(), nil
}
