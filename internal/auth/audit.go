package auth

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/audit"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

//nolint:gochecknoglobals
var decisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Number of audited authorization decisions, by outcome.",
	},
	[]string{"outcome"},
)

// Target names used in the audit trail.
const (
	targetUser       = "user"
	targetRole       = "role"
	targetPermission = "permission"
	targetTenant     = "tenant"
)

// fail audits err when it is a denial (authorization, isolation or validation) and returns it unchanged.
// Infrastructure errors pass through unaudited.
func (s *Service) fail(ctx context.Context, actor *Subject, action, targetType string, targetID uint, err error) error {
	var outcome models.AuditOutcome

	switch {
	case errors.Is(err, errs.ErrTenantIsolation):
		outcome = models.AuditIsolation
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrValidation):
		outcome = models.AuditDenied
	default:
		return err
	}

	log.Warn().
		Err(err).
		Uint("user_id", actor.ID()).
		Interface("tenant_id", actor.TenantID()).
		Str("action", action).
		Str("target_type", targetType).
		Uint("target_id", targetID).
		Str("outcome", string(outcome)).
		Msg("authorization denied")

	s.record(ctx, actor, action, targetType, targetID, outcome, err.Error())

	return err
}

// succeed audits a completed mutation.
func (s *Service) succeed(ctx context.Context, actor *Subject, action, targetType string, targetID uint) {
	log.Info().
		Uint("user_id", actor.ID()).
		Interface("tenant_id", actor.TenantID()).
		Str("action", action).
		Str("target_type", targetType).
		Uint("target_id", targetID).
		Msg("authorization audit")

	s.record(ctx, actor, action, targetType, targetID, models.AuditSuccess, "")
}

func (s *Service) record(
	ctx context.Context,
	actor *Subject,
	action, targetType string,
	targetID uint,
	outcome models.AuditOutcome,
	reason string,
) {
	decisions.WithLabelValues(string(outcome)).Inc()

	if len(reason) > 255 { //nolint:mnd
		reason = reason[:255]
	}

	entry := &models.AuditLog{
		ActorID:    actor.ID(),
		TenantID:   actor.TenantID(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    outcome,
		Reason:     reason,
	}

	if err := audit.Record(s.DB(ctx), entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

// Deny audits a denial raised outside the service, e.g. by the route middleware.
func (s *Service) Deny(ctx context.Context, actor *Subject, action string, err error) error {
	return s.fail(ctx, actor, action, "", 0, err)
}

// Audited records a mutation completed outside the service, e.g. tenant onboarding.
func (s *Service) Audited(ctx context.Context, actor *Subject, action, targetType string, targetID uint) {
	s.succeed(ctx, actor, action, targetType, targetID)
}
