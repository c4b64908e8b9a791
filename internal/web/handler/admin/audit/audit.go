// Package audit provides the API handler reading the audit trail.
package audit

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/audit"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/web/handler"
)

// Path is the path of the audit trail.
const Path = "/audit"

// Service provides the audit endpoint.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error {
	if router == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilFatalLogMsg)
	}

	s.cfg = cfg
	s.authService = authService

	router.Get(Path, auth.RequirePermission(authService, auth.PermAuditView), s.List)

	return nil
}

// List returns the newest audit entries. Query: outcome, actor_id, tenant_id, limit.
func (s *Service) List(c fiber.Ctx) error {
	sub, err := auth.RequireSubject(c)
	if err != nil {
		return err
	}

	f := audit.Filter{Outcome: models.AuditOutcome(c.Query("outcome"))}

	if f.Limit, err = queryUint[int](c, "limit"); err != nil {
		return err
	}

	if f.ActorID, err = queryUint[uint](c, "actor_id"); err != nil {
		return err
	}

	tenantID, err := queryUint[uint](c, "tenant_id")
	if err != nil {
		return err
	}

	if tenantID > 0 {
		f.TenantID = &tenantID
	}

	entries, err := s.authService.ListAudit(c.Context(), sub, f)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.StatusOK, entries)
}

func queryUint[T int | uint](c fiber.Ctx, key string) (T, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errs.Invalid(key, "must be a positive number")
	}

	return T(v), nil
}
