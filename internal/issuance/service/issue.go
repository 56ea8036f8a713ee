package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"relief/internal/issuance/models"
	"relief/internal/issuance/policy"
	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
	"relief/pkg/platform/audit"
	"relief/pkg/platform/sentinel"
)

// issueAttempt carries facts that must survive the transaction callback.
type issueAttempt struct {
	minted      bool
	amount      uint64
	totalIssued uint64
}

// Issue runs the guarded issuance for one (recipient, disaster) pair.
//
// Guards run in a fixed order and the first failure is returned: paused,
// unauthorized, invalid_recipient, not_verified, disaster_inactive,
// already_claimed, metadata_too_long, invalid_disaster, exceeded_limit,
// insufficient_funds, then the mint. Claim, voucher, totals and the audit
// record commit together. If anything fails after the mint, the mint is
// reversed when the ledger supports it.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "issuance.Issue", trace.WithAttributes(
		attribute.String("caller", req.Caller.String()),
		attribute.String("recipient", req.Recipient.String()),
		attribute.String("disaster_id", req.DisasterID.String()),
	))

	var (
		attempt issueAttempt
		result  *models.IssueResult
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		r, err := s.issue(ctx, store, req, &attempt)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		err = storageFailure(err, "issuance transaction failed")
		if attempt.minted {
			s.compensate(ctx, req, attempt.amount, err)
		}
		result = nil
	}

	s.metrics.ObserveIssueLatency(time.Since(start))
	s.metrics.IncrementIssueOutcome(outcome(err))
	endSpan(span, err)

	if err != nil {
		s.logger.InfoContext(ctx, "issuance rejected",
			"caller", req.Caller,
			"recipient", req.Recipient,
			"disaster_id", req.DisasterID,
			"outcome", outcome(err),
		)
		s.trackRejection(ctx, req, err)
		return nil, err
	}

	s.metrics.SetTotalIssued(attempt.totalIssued)
	s.logger.InfoContext(ctx, "voucher issued",
		"caller", req.Caller,
		"recipient", req.Recipient,
		"disaster_id", req.DisasterID,
		"voucher_id", result.VoucherID,
		"amount", result.Amount,
	)
	return result, nil
}

func (s *Service) issue(ctx context.Context, store ports.Store, req models.IssueRequest, attempt *issueAttempt) (*models.IssueResult, error) {
	state, err := loadState(ctx, store)
	if err != nil {
		return nil, err
	}
	if state.Paused {
		return nil, dErrors.New(dErrors.CodePaused, "issuance is paused")
	}
	if err := s.authorize(ctx, store, state, req.Caller, policy.ActionIssue); err != nil {
		return nil, err
	}
	if _, err := id.ParsePrincipal(req.Recipient.String()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidRecipient, "recipient is malformed")
	}

	if err := s.requireVerified(ctx, req.Recipient); err != nil {
		return nil, err
	}
	status, err := s.activeDisaster(ctx, req.DisasterID, state.MinSeverity)
	if err != nil {
		return nil, err
	}

	_, err = store.FindClaim(ctx, req.Recipient, req.DisasterID)
	switch {
	case err == nil:
		return nil, dErrors.New(dErrors.CodeAlreadyClaimed, "recipient already claimed for this disaster")
	case !isNotFound(err):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up claim")
	}

	if len(req.Metadata) > models.MaxMetadataLength {
		return nil, dErrors.New(dErrors.CodeMetadataTooLong, "metadata exceeds 256 bytes")
	}

	rule, err := store.FindRule(ctx, req.DisasterID)
	if err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeInvalidDisaster, "no allocation rule for disaster")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load allocation rule")
	}
	amount, err := rule.Amount(status.Severity)
	if err != nil {
		return nil, err
	}
	if amount > state.MaxPerVictim {
		return nil, dErrors.New(dErrors.CodeExceededLimit, "amount exceeds per-victim cap")
	}

	if err := s.requireFunds(ctx, amount); err != nil {
		return nil, err
	}

	// Derive every committed value before minting so arithmetic failures
	// never need compensation.
	height := s.clock.Height(ctx)
	claim, err := models.NewClaim(req.Recipient, req.DisasterID, amount, height, req.Metadata)
	if err != nil {
		return nil, err
	}
	next, voucherID, err := state.WithIssuance(amount)
	if err != nil {
		return nil, err
	}

	if err := s.mint(ctx, req.Recipient, amount); err != nil {
		return nil, err
	}
	attempt.minted = true
	attempt.amount = amount

	if err := store.CreateClaim(ctx, claim); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeAlreadyClaimed, "recipient already claimed for this disaster")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record claim")
	}
	voucher := &models.IssuedVoucher{
		ID:         voucherID,
		Recipient:  req.Recipient,
		Amount:     amount,
		DisasterID: req.DisasterID,
		IssuedAt:   height,
	}
	if err := store.CreateVoucher(ctx, voucher); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record voucher")
	}
	if err := store.SaveState(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save engine state")
	}

	if err := s.logEvent(ctx, req.Caller, audit.EventVoucherIssued, map[string]string{
		"caller":          req.Caller.String(),
		"recipient":       req.Recipient.String(),
		"amount":          strconv.FormatUint(amount, 10),
		"disaster_id":     req.DisasterID.String(),
		"voucher_id":      voucherID.String(),
		"severity":        strconv.FormatUint(status.Severity, 10),
		"claimed_at":      claim.ClaimedAt.String(),
		"expires_at":      claim.ExpiresAt.String(),
		"metadata_digest": metadataDigest(req.Metadata),
	}); err != nil {
		return nil, err
	}

	attempt.totalIssued = next.TotalIssued
	return &models.IssueResult{
		Amount:     amount,
		VoucherID:  voucherID,
		DisasterID: req.DisasterID,
		Recipient:  req.Recipient,
		ClaimedAt:  claim.ClaimedAt,
		ExpiresAt:  claim.ExpiresAt,
	}, nil
}

func (s *Service) requireVerified(ctx context.Context, recipient id.Principal) error {
	start := time.Now()
	verified, err := s.registry.IsVerified(ctx, recipient)
	s.observe(ctx, "registry", start, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeExternalFailure, "beneficiary registry unavailable")
	}
	if !verified {
		return dErrors.New(dErrors.CodeNotVerified, "recipient is not a verified beneficiary")
	}
	return nil
}

func (s *Service) activeDisaster(ctx context.Context, disasterID id.DisasterID, minSeverity uint64) (*ports.DisasterStatus, error) {
	start := time.Now()
	status, err := s.oracle.DisasterStatus(ctx, disasterID)
	s.observe(ctx, "oracle", start, err)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeExternalFailure, "event oracle unavailable")
	}
	if status == nil {
		return nil, dErrors.New(dErrors.CodeExternalFailure, "event oracle returned no status")
	}
	if !status.Active || status.Severity < minSeverity {
		return nil, dErrors.New(dErrors.CodeDisasterInactive, "disaster is inactive or below severity threshold")
	}
	return status, nil
}

func (s *Service) requireFunds(ctx context.Context, amount uint64) error {
	start := time.Now()
	balance, err := s.ledger.Balance(ctx, s.custodian)
	s.observe(ctx, "ledger", start, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeExternalFailure, "token ledger unavailable")
	}
	if balance < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds, "custodial balance is insufficient")
	}
	return nil
}

func (s *Service) mint(ctx context.Context, recipient id.Principal, amount uint64) error {
	start := time.Now()
	err := s.ledger.Mint(ctx, recipient, amount)
	s.observe(ctx, "ledger", start, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidAmount, "mint failed")
	}
	return nil
}

// compensate reverses a mint whose issuance did not commit.
func (s *Service) compensate(ctx context.Context, req models.IssueRequest, amount uint64, cause error) {
	reverser, ok := s.ledger.(ports.MintReverser)
	if !ok {
		s.metrics.IncrementCompensation("unsupported")
		s.logger.ErrorContext(ctx, "CRITICAL: minted voucher not committed and ledger cannot reverse it",
			"recipient", req.Recipient,
			"disaster_id", req.DisasterID,
			"amount", amount,
			"cause", cause,
		)
		return
	}
	// The request context may already be cancelled; the burn must still run.
	burnCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := reverser.Burn(burnCtx, req.Recipient, amount); err != nil {
		s.metrics.IncrementCompensation("failed")
		s.logger.ErrorContext(ctx, "CRITICAL: failed to reverse mint",
			"recipient", req.Recipient,
			"disaster_id", req.DisasterID,
			"amount", amount,
			"cause", cause,
			"error", err,
		)
		return
	}
	s.metrics.IncrementCompensation("burned")
	s.logger.WarnContext(ctx, "reversed mint after failed issuance",
		"recipient", req.Recipient,
		"disaster_id", req.DisasterID,
		"amount", amount,
	)
}

// logEvent writes a required audit record; failure fails the call.
func (s *Service) logEvent(ctx context.Context, principal id.Principal, event audit.AuditEvent, data map[string]string) error {
	start := time.Now()
	err := s.auditor.LogEvent(ctx, principal, string(event), data)
	s.observe(ctx, "audit", start, err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeExternalFailure, "audit logger failed")
	}
	return nil
}

func (s *Service) trackRejection(ctx context.Context, req models.IssueRequest, err error) {
	if s.ops == nil {
		return
	}
	s.ops.Track(ctx, audit.Event{
		Principal: req.Caller,
		Action:    string(audit.EventIssuanceRejected),
		Timestamp: time.Now(),
		Data: map[string]string{
			"recipient":   req.Recipient.String(),
			"disaster_id": req.DisasterID.String(),
			"outcome":     outcome(err),
		},
	})
}

// metadataDigest identifies the claim metadata in audit records without
// copying it there.
func metadataDigest(metadata []byte) string {
	sum := blake2b.Sum256(metadata)
	return hex.EncodeToString(sum[:])
}
