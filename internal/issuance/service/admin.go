package service

import (
	"context"
	"strconv"
	"strings"

	"relief/internal/issuance/models"
	"relief/internal/issuance/policy"
	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
	"relief/pkg/platform/audit"
)

// adminCall is the body of one administrative operation. It runs after
// authorization with the freshly loaded state and returns the audit event to
// record, or an error.
type adminCall func(ctx context.Context, store ports.Store, state *models.EngineState) (audit.AuditEvent, map[string]string, error)

// runAdmin authorizes caller for action, applies fn and records its audit
// event, all inside one transaction.
func (s *Service) runAdmin(ctx context.Context, caller id.Principal, action policy.Action, fn adminCall) error {
	ctx, span := s.tracer.Start(ctx, "issuance."+string(action))
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		state, err := loadState(ctx, store)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, store, state, caller, action); err != nil {
			return err
		}
		event, data, err := fn(ctx, store, state)
		if err != nil {
			return err
		}
		data["caller"] = caller.String()
		return s.logEvent(ctx, caller, event, data)
	})
	if err != nil {
		err = storageFailure(err, "administrative transaction failed")
	}
	s.metrics.IncrementAdminOutcome(string(action), outcome(err))
	endSpan(span, err)

	if err != nil {
		s.logger.WarnContext(ctx, "administrative call rejected",
			"caller", caller,
			"action", action,
			"outcome", outcome(err),
		)
		return err
	}
	s.logger.InfoContext(ctx, "administrative call applied", "caller", caller, "action", action)
	return nil
}

func saveState(ctx context.Context, store ports.Store, state *models.EngineState) error {
	if err := store.SaveState(ctx, state); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save engine state")
	}
	return nil
}

// SetAllocationRule creates or replaces the rule for rule.DisasterID. Existing
// claims keep the amount they were issued with.
func (s *Service) SetAllocationRule(ctx context.Context, caller id.Principal, rule models.AllocationRule) error {
	return s.runAdmin(ctx, caller, policy.ActionSetRule, func(ctx context.Context, store ports.Store, _ *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		if err := store.SaveRule(ctx, &rule); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save allocation rule")
		}
		return audit.EventRuleSet, map[string]string{
			"disaster_id":         rule.DisasterID.String(),
			"base_amount":         strconv.FormatUint(rule.BaseAmount, 10),
			"severity_multiplier": strconv.FormatUint(rule.SeverityMultiplier, 10),
			"max_victims":         strconv.FormatUint(rule.MaxVictims, 10),
			"funds_allocated":     strconv.FormatUint(rule.FundsAllocated, 10),
		}, nil
	})
}

// Pause blocks all issuance until Unpause. Pausing twice is not an error.
func (s *Service) Pause(ctx context.Context, caller id.Principal) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause restores issuance without touching any other state.
func (s *Service) Unpause(ctx context.Context, caller id.Principal) error {
	return s.setPaused(ctx, caller, false)
}

func (s *Service) setPaused(ctx context.Context, caller id.Principal, paused bool) error {
	action, event := policy.ActionUnpause, audit.EventEngineUnpaused
	if paused {
		action, event = policy.ActionPause, audit.EventEnginePaused
	}
	return s.runAdmin(ctx, caller, action, func(ctx context.Context, store ports.Store, state *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		next := state.Clone()
		next.Paused = paused
		if err := saveState(ctx, store, next); err != nil {
			return "", nil, err
		}
		return event, map[string]string{"was_paused": strconv.FormatBool(state.Paused)}, nil
	})
}

// SetMaxPerVictim replaces the per-victim cap.
func (s *Service) SetMaxPerVictim(ctx context.Context, caller id.Principal, limit uint64) error {
	return s.runAdmin(ctx, caller, policy.ActionSetMaxPerVictim, func(ctx context.Context, store ports.Store, state *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		next := state.Clone()
		next.MaxPerVictim = limit
		if err := saveState(ctx, store, next); err != nil {
			return "", nil, err
		}
		return audit.EventMaxPerVictimSet, map[string]string{
			"previous": strconv.FormatUint(state.MaxPerVictim, 10),
			"value":    strconv.FormatUint(limit, 10),
		}, nil
	})
}

// SetMinSeverity replaces the minimum disaster severity eligible for issuance.
func (s *Service) SetMinSeverity(ctx context.Context, caller id.Principal, threshold uint64) error {
	return s.runAdmin(ctx, caller, policy.ActionSetMinSeverity, func(ctx context.Context, store ports.Store, state *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		next := state.Clone()
		next.MinSeverity = threshold
		if err := saveState(ctx, store, next); err != nil {
			return "", nil, err
		}
		return audit.EventMinSeveritySet, map[string]string{
			"previous": strconv.FormatUint(state.MinSeverity, 10),
			"value":    strconv.FormatUint(threshold, 10),
		}, nil
	})
}

// TransferAdmin hands every administrative permission to newAdmin. The
// previous administrator loses them, and any role it held, as soon as the
// call commits.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin id.Principal) error {
	return s.runAdmin(ctx, caller, policy.ActionTransferAdmin, func(ctx context.Context, store ports.Store, state *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		if _, err := id.ParsePrincipal(newAdmin.String()); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInvalidRecipient, "new administrator is malformed")
		}
		next := state.Clone()
		next.Admin = newAdmin
		if err := saveState(ctx, store, next); err != nil {
			return "", nil, err
		}
		// Grants held by the outgoing admin go with the admin seat.
		var revoked []string
		if newAdmin != state.Admin {
			for _, role := range policy.Roles() {
				held, err := store.HasRole(ctx, role, state.Admin)
				if err != nil {
					return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role grant")
				}
				if !held {
					continue
				}
				if err := store.RevokeRole(ctx, role, state.Admin); err != nil {
					return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke role")
				}
				revoked = append(revoked, string(role))
			}
		}
		return audit.EventAdminTransferred, map[string]string{
			"previous_admin": state.Admin.String(),
			"new_admin":      newAdmin.String(),
			"revoked_roles":  strings.Join(revoked, ","),
		}, nil
	})
}

// GrantRole lets principal perform the actions role permits.
func (s *Service) GrantRole(ctx context.Context, caller id.Principal, role models.Role, principal id.Principal) error {
	return s.runAdmin(ctx, caller, policy.ActionGrantRole, func(ctx context.Context, store ports.Store, _ *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		if _, err := models.ParseRole(string(role)); err != nil {
			return "", nil, err
		}
		if _, err := id.ParsePrincipal(principal.String()); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInvalidRecipient, "grantee is malformed")
		}
		if err := store.GrantRole(ctx, role, principal); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant role")
		}
		return audit.EventRoleGranted, map[string]string{
			"role":      string(role),
			"principal": principal.String(),
		}, nil
	})
}

// RevokeRole removes a grant. Revoking an absent grant is not an error.
func (s *Service) RevokeRole(ctx context.Context, caller id.Principal, role models.Role, principal id.Principal) error {
	return s.runAdmin(ctx, caller, policy.ActionRevokeRole, func(ctx context.Context, store ports.Store, _ *models.EngineState) (audit.AuditEvent, map[string]string, error) {
		if _, err := models.ParseRole(string(role)); err != nil {
			return "", nil, err
		}
		if err := store.RevokeRole(ctx, role, principal); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke role")
		}
		return audit.EventRoleRevoked, map[string]string{
			"role":      string(role),
			"principal": principal.String(),
		}, nil
	})
}
