package auth

import (
	"sort"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

// Subject is an authenticated user with its effective roles and permissions loaded.
// It answers capability and tier questions without touching the database; build a
// fresh Subject per request so changes take effect immediately.
type Subject struct {
	User  models.User
	Roles []models.Role

	direct  map[uint]models.Permission
	granted map[uint]models.Permission
	byName  map[string]uint
}

// NewSubject assembles a Subject. Inactive roles and permissions are dropped, and an
// inactive user holds nothing at all.
func NewSubject(u models.User, roles []models.Role, direct, viaRoles []models.Permission) *Subject {
	s := &Subject{
		User:    u,
		direct:  make(map[uint]models.Permission, len(direct)),
		granted: make(map[uint]models.Permission, len(viaRoles)),
		byName:  make(map[string]uint, len(direct)+len(viaRoles)),
	}

	if !u.Active {
		return s
	}

	for i := range roles {
		if roles[i].Active && !roles[i].DeletedAt.Valid {
			s.Roles = append(s.Roles, roles[i])
		}
	}

	for i := range direct {
		if direct[i].Active {
			s.direct[direct[i].ID] = direct[i]
			s.byName[direct[i].Name] = direct[i].ID
		}
	}

	for i := range viaRoles {
		if viaRoles[i].Active {
			s.granted[viaRoles[i].ID] = viaRoles[i]
			s.byName[viaRoles[i].Name] = viaRoles[i].ID
		}
	}

	return s
}

// ID returns the user id.
func (s *Subject) ID() uint {
	return s.User.ID
}

// TenantID returns the user's tenant, nil for system-level users.
func (s *Subject) TenantID() *uint {
	return s.User.TenantID
}

func (s *Subject) hasTier(tier models.RoleTier) bool {
	for i := range s.Roles {
		if s.Roles[i].Tier == tier {
			return true
		}
	}

	return false
}

// IsSuperAdmin reports whether any effective role is of the SuperAdmin tier.
func (s *Subject) IsSuperAdmin() bool {
	return s.hasTier(models.TierSuperAdmin)
}

// IsEkklesiaAdmin reports whether any effective role is of the EkklesiaAdmin tier.
func (s *Subject) IsEkklesiaAdmin() bool {
	return s.hasTier(models.TierEkklesiaAdmin)
}

// IsEkklesiaManager reports whether any effective role is of the EkklesiaManager tier.
func (s *Subject) IsEkklesiaManager() bool {
	return s.hasTier(models.TierEkklesiaManager)
}

// IsAdmin reports whether the user holds a global administrative tier.
func (s *Subject) IsAdmin() bool {
	return s.IsSuperAdmin() || s.IsEkklesiaAdmin()
}

// TierLevel returns the most privileged global tier level held (1 = SuperAdmin),
// or 0 when the user holds custom roles only.
func (s *Subject) TierLevel() int {
	level := 0

	for i := range s.Roles {
		l := s.Roles[i].Tier.Level()
		if l > 0 && (level == 0 || l < level) {
			level = l
		}
	}

	return level
}

func (s *Subject) resolve(ref permission.Ref) (uint, bool) {
	if ref.ID() != 0 {
		return ref.ID(), true
	}

	id, ok := s.byName[ref.Name()]

	return id, ok
}

// DirectlyHas reports whether ref is granted straight to the user.
func (s *Subject) DirectlyHas(ref permission.Ref) bool {
	id, ok := s.resolve(ref)
	if !ok {
		return false
	}

	_, ok = s.direct[id]

	return ok
}

// RoleHas reports whether any effective role grants ref.
func (s *Subject) RoleHas(ref permission.Ref) bool {
	id, ok := s.resolve(ref)
	if !ok {
		return false
	}

	_, ok = s.granted[id]

	return ok
}

// HasPermissionTo reports whether the user holds ref. SuperAdmin holds everything;
// everyone else holds the union of direct grants and role grants. There is no deny.
func (s *Subject) HasPermissionTo(ref permission.Ref) bool {
	if s.IsSuperAdmin() {
		return true
	}

	return s.DirectlyHas(ref) || s.RoleHas(ref)
}

// HasAnyPermission reports whether at least one ref is held. False for no refs.
func (s *Subject) HasAnyPermission(refs ...permission.Ref) bool {
	for _, ref := range refs {
		if s.HasPermissionTo(ref) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether every ref is held. True for no refs.
func (s *Subject) HasAllPermissions(refs ...permission.Ref) bool {
	for _, ref := range refs {
		if !s.HasPermissionTo(ref) {
			return false
		}
	}

	return true
}

// Can is HasPermissionTo by name.
func (s *Subject) Can(name string) bool {
	return s.HasPermissionTo(permission.ByName(name))
}

// Require returns an AuthorizationError unless every named permission is held.
func (s *Subject) Require(names ...string) error {
	for _, name := range names {
		if !s.Can(name) {
			return errs.MissingPermission(name)
		}
	}

	return nil
}

// GetAllPermissions returns the union of direct and role permissions, ordered by name.
func (s *Subject) GetAllPermissions() []models.Permission {
	out := make([]models.Permission, 0, len(s.direct)+len(s.granted))

	for id, p := range s.direct {
		if _, dup := s.granted[id]; !dup {
			out = append(out, p)
		}
	}

	for _, p := range s.granted {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// PermissionNames returns the names of GetAllPermissions.
func (s *Subject) PermissionNames() []string {
	return permission.Names(s.GetAllPermissions())
}
