package service

import (
	"context"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
)

// Claim returns the claim for (beneficiary, disasterID), or nil when none exists.
func (s *Service) Claim(ctx context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error) {
	claim, err := s.reads.FindClaim(ctx, beneficiary, disasterID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
	}
	return claim, nil
}

// Rule returns the allocation rule for disasterID, or nil when none is set.
func (s *Service) Rule(ctx context.Context, disasterID id.DisasterID) (*models.AllocationRule, error) {
	rule, err := s.reads.FindRule(ctx, disasterID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load allocation rule")
	}
	return rule, nil
}

// Voucher returns the voucher with voucherID, or nil when none was issued.
func (s *Service) Voucher(ctx context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error) {
	voucher, err := s.reads.FindVoucher(ctx, voucherID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voucher")
	}
	return voucher, nil
}

// State returns the current engine totals and parameters.
func (s *Service) State(ctx context.Context) (*models.EngineState, error) {
	state, err := s.reads.LoadState(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load engine state")
	}
	return state, nil
}

// HasRole reports whether principal currently holds role.
func (s *Service) HasRole(ctx context.Context, role models.Role, principal id.Principal) (bool, error) {
	ok, err := s.reads.HasRole(ctx, role, principal)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role grant")
	}
	return ok, nil
}

// Height exposes the engine clock so callers can evaluate claim expiry.
func (s *Service) Height(ctx context.Context) id.Height {
	return s.clock.Height(ctx)
}
