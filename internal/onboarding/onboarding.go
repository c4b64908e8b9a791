// Package onboarding creates a new tenant together with its administrator role and
// contact accounts in a single transaction.
package onboarding

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/permission"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/role"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/tenant"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/secret"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/validate"
)

// AdminRoleName is the name of the custom role every new tenant starts with.
const AdminRoleName = "Administrator"

const action = "tenant.onboard"

// Contact is a person to create an account for. An empty password is generated.
type Contact struct {
	Name          string `json:"name"           validate:"required,max=150"`
	Email         string `json:"email"          validate:"required,email,max=255"`
	ContactNumber string `json:"contact_number" validate:"max=50"`
	Password      string `json:"password"       validate:"omitempty,min=8,max=128"`
}

// Input describes a tenant to onboard.
type Input struct {
	Name      string   `json:"name"      validate:"required,max=150"`
	Address   string   `json:"address"   validate:"max=255"`
	Primary   Contact  `json:"primary"   validate:"required"`
	Secondary *Contact `json:"secondary" validate:"omitempty"`
}

// Result is what onboarding created. GeneratedPasswords maps the email of every
// contact whose password was generated to that password; it is shown once.
type Result struct {
	Tenant             models.Tenant     `json:"tenant"`
	AdminRole          models.Role       `json:"admin_role"`
	Primary            models.User       `json:"primary"`
	Secondary          *models.User      `json:"secondary,omitempty"`
	GeneratedPasswords map[string]string `json:"generated_passwords,omitempty"`
}

// Service onboards tenants.
type Service struct {
	auth      *auth.Service
	validator *validate.Validator
}

// NewService returns an onboarding service.
func NewService(authService *auth.Service, v *validate.Validator) *Service {
	return &Service{auth: authService, validator: v}
}

// Onboard creates the tenant, its Administrator role granted the tenant administration
// permissions, the primary contact (user type 1, primary admin) and the optional
// secondary contact (user type 2). Only global administrators may onboard.
// Nothing is created when any step fails.
func (s *Service) Onboard(ctx context.Context, actor *auth.Subject, in Input) (*Result, error) {
	if !actor.IsAdmin() {
		return nil, s.auth.Deny(ctx, actor, action, errs.Forbidden("only global administrators can onboard tenants"))
	}

	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	if in.Secondary != nil && user.NormalizeEmail(in.Secondary.Email) == user.NormalizeEmail(in.Primary.Email) {
		return nil, errs.Invalid("secondary.email", "secondary contact needs its own email")
	}

	res := &Result{GeneratedPasswords: map[string]string{}}

	err := s.auth.DB(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := tenant.Exists(tx, in.Name)
		if err != nil {
			return err
		}

		if exists {
			return errs.Duplicate("tenant", in.Name)
		}

		t, err := tenant.Create(tx, in.Name, in.Address)
		if err != nil {
			return err
		}

		res.Tenant = *t

		r, err := role.Create(tx, role.Input{
			Name:        AdminRoleName,
			Description: "Administers " + t.Name,
			TenantID:    &t.ID,
		})
		if err != nil {
			return err
		}

		if err = role.SyncPermissions(tx, r.ID, permission.Refs(auth.TenantAdminPermissions()...)); err != nil {
			return err
		}

		res.AdminRole = *r

		primary, err := s.createContact(tx, res, in.Primary, t.ID, r.ID, models.UserTypePrimaryContact)
		if err != nil {
			return err
		}

		res.Primary = *primary

		if in.Secondary != nil {
			if res.Secondary, err = s.createContact(tx, res, *in.Secondary, t.ID, r.ID, models.UserTypeSecondaryContact); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("tenant", in.Name).Uint("user_id", actor.ID()).Msg("tenant onboarding failed")

		return nil, err
	}

	log.Info().
		Uint("tenant_id", res.Tenant.ID).
		Uint("role_id", res.AdminRole.ID).
		Uint("user_id", actor.ID()).
		Msg("tenant onboarded")

	s.auth.Audited(ctx, actor, action, "tenant", res.Tenant.ID)

	return res, nil
}

func (s *Service) createContact(
	tx *gorm.DB,
	res *Result,
	c Contact,
	tenantID, roleID uint,
	userType models.UserType,
) (*models.User, error) {
	password := c.Password
	if password == "" {
		generated, err := secret.Password()
		if err != nil {
			return nil, err
		}

		password = generated
		res.GeneratedPasswords[user.NormalizeEmail(c.Email)] = generated
	}

	return user.Create(tx, user.Input{
		Name:           c.Name,
		Email:          c.Email,
		Password:       password,
		ContactNumber:  c.ContactNumber,
		UserType:       userType,
		TenantID:       &tenantID,
		RoleID:         &roleID,
		IsPrimaryAdmin: userType == models.UserTypePrimaryContact,
	})
}
