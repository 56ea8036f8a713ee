package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
	"relief/pkg/platform/sentinel"
	txcontext "relief/pkg/platform/tx"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Postgres persists engine state with database/sql and lib/pq. A store bound
// to a transaction (NewPostgresTx) locks the engine_state row on LoadState,
// which serializes every issuance and administrative call.
type Postgres struct {
	q         txcontext.Querier
	lockState bool
}

// NewPostgres returns a store for reads outside any transaction.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{q: db}
}

// NewPostgresTx returns a store bound to tx.
func NewPostgresTx(tx *sql.Tx) *Postgres {
	return &Postgres{q: tx, lockState: true}
}

// u64 round-trips uint64 through NUMERIC(20,0); database/sql rejects uint64
// arguments with the high bit set.
type u64 uint64

func (v u64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

func (v *u64) Scan(src any) error {
	var s string
	switch t := src.(type) {
	case []byte:
		s = string(t)
	case string:
		s = t
	case int64:
		if t < 0 {
			return fmt.Errorf("negative value %d for unsigned column", t)
		}
		*v = u64(t)
		return nil
	default:
		return fmt.Errorf("unsupported type %T for unsigned column", src)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse unsigned column: %w", err)
	}
	*v = u64(n)
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// EnsureState inserts the initial engine state unless one already exists.
func (s *Postgres) EnsureState(ctx context.Context, initial *models.EngineState) error {
	query := `
		INSERT INTO engine_state (id, admin, paused, total_issued, max_per_victim, min_severity, next_voucher_id)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.q.ExecContext(ctx, query,
		initial.Admin.String(),
		initial.Paused,
		u64(initial.TotalIssued),
		u64(initial.MaxPerVictim),
		u64(initial.MinSeverity),
		u64(initial.NextVoucherID),
	)
	if err != nil {
		return fmt.Errorf("insert engine state: %w", err)
	}
	return nil
}

func (s *Postgres) LoadState(ctx context.Context) (*models.EngineState, error) {
	query := `
		SELECT admin, paused, total_issued, max_per_victim, min_severity, next_voucher_id
		FROM engine_state
		WHERE id = 1
	`
	if s.lockState {
		query += " FOR UPDATE"
	}
	var (
		admin                       string
		state                       models.EngineState
		total, maxPer, minSev, next u64
	)
	err := s.q.QueryRowContext(ctx, query).Scan(&admin, &state.Paused, &total, &maxPer, &minSev, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load engine state: %w", err)
	}
	state.Admin = id.Principal(admin)
	state.TotalIssued = uint64(total)
	state.MaxPerVictim = uint64(maxPer)
	state.MinSeverity = uint64(minSev)
	state.NextVoucherID = id.VoucherID(next)
	return &state, nil
}

func (s *Postgres) SaveState(ctx context.Context, state *models.EngineState) error {
	query := `
		UPDATE engine_state
		SET admin = $1, paused = $2, total_issued = $3, max_per_victim = $4,
			min_severity = $5, next_voucher_id = $6, updated_at = NOW()
		WHERE id = 1
	`
	res, err := s.q.ExecContext(ctx, query,
		state.Admin.String(),
		state.Paused,
		u64(state.TotalIssued),
		u64(state.MaxPerVictim),
		u64(state.MinSeverity),
		u64(state.NextVoucherID),
	)
	if err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindRule(ctx context.Context, disasterID id.DisasterID) (*models.AllocationRule, error) {
	query := `
		SELECT base_amount, severity_multiplier, max_victims, funds_allocated
		FROM allocation_rules
		WHERE disaster_id = $1
	`
	var base, mult, maxVictims, funds u64
	err := s.q.QueryRowContext(ctx, query, u64(disasterID)).Scan(&base, &mult, &maxVictims, &funds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find allocation rule: %w", err)
	}
	return &models.AllocationRule{
		DisasterID:         disasterID,
		BaseAmount:         uint64(base),
		SeverityMultiplier: uint64(mult),
		MaxVictims:         uint64(maxVictims),
		FundsAllocated:     uint64(funds),
	}, nil
}

func (s *Postgres) SaveRule(ctx context.Context, rule *models.AllocationRule) error {
	query := `
		INSERT INTO allocation_rules (disaster_id, base_amount, severity_multiplier, max_victims, funds_allocated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (disaster_id) DO UPDATE SET
			base_amount = EXCLUDED.base_amount,
			severity_multiplier = EXCLUDED.severity_multiplier,
			max_victims = EXCLUDED.max_victims,
			funds_allocated = EXCLUDED.funds_allocated,
			updated_at = NOW()
	`
	_, err := s.q.ExecContext(ctx, query,
		u64(rule.DisasterID),
		u64(rule.BaseAmount),
		u64(rule.SeverityMultiplier),
		u64(rule.MaxVictims),
		u64(rule.FundsAllocated),
	)
	if err != nil {
		return fmt.Errorf("save allocation rule: %w", err)
	}
	return nil
}

func (s *Postgres) FindClaim(ctx context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error) {
	query := `
		SELECT amount, claimed_at, expires_at, metadata
		FROM victim_claims
		WHERE beneficiary = $1 AND disaster_id = $2
	`
	var amount, claimedAt, expiresAt u64
	claim := models.VictimClaim{Beneficiary: beneficiary, DisasterID: disasterID}
	err := s.q.QueryRowContext(ctx, query, beneficiary.String(), u64(disasterID)).
		Scan(&amount, &claimedAt, &expiresAt, &claim.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find claim: %w", err)
	}
	claim.Amount = uint64(amount)
	claim.ClaimedAt = id.Height(claimedAt)
	claim.ExpiresAt = id.Height(expiresAt)
	return &claim, nil
}

func (s *Postgres) CreateClaim(ctx context.Context, claim *models.VictimClaim) error {
	query := `
		INSERT INTO victim_claims (beneficiary, disaster_id, amount, claimed_at, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	metadata := claim.Metadata
	if metadata == nil {
		metadata = []byte{}
	}
	_, err := s.q.ExecContext(ctx, query,
		claim.Beneficiary.String(),
		u64(claim.DisasterID),
		u64(claim.Amount),
		u64(claim.ClaimedAt),
		u64(claim.ExpiresAt),
		metadata,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *Postgres) FindVoucher(ctx context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error) {
	query := `
		SELECT recipient, amount, disaster_id, issued_at
		FROM issued_vouchers
		WHERE id = $1
	`
	var (
		recipient                   string
		amount, disasterID, issued u64
	)
	err := s.q.QueryRowContext(ctx, query, u64(voucherID)).Scan(&recipient, &amount, &disasterID, &issued)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find voucher: %w", err)
	}
	return &models.IssuedVoucher{
		ID:         voucherID,
		Recipient:  id.Principal(recipient),
		Amount:     uint64(amount),
		DisasterID: id.DisasterID(disasterID),
		IssuedAt:   id.Height(issued),
	}, nil
}

func (s *Postgres) CreateVoucher(ctx context.Context, voucher *models.IssuedVoucher) error {
	query := `
		INSERT INTO issued_vouchers (id, recipient, amount, disaster_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.q.ExecContext(ctx, query,
		u64(voucher.ID),
		voucher.Recipient.String(),
		u64(voucher.Amount),
		u64(voucher.DisasterID),
		u64(voucher.IssuedAt),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

func (s *Postgres) HasRole(ctx context.Context, role models.Role, principal id.Principal) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM role_grants WHERE role = $1 AND principal = $2)`
	var ok bool
	if err := s.q.QueryRowContext(ctx, query, string(role), principal.String()).Scan(&ok); err != nil {
		return false, fmt.Errorf("check role grant: %w", err)
	}
	return ok, nil
}

func (s *Postgres) GrantRole(ctx context.Context, role models.Role, principal id.Principal) error {
	query := `
		INSERT INTO role_grants (role, principal)
		VALUES ($1, $2)
		ON CONFLICT (role, principal) DO NOTHING
	`
	if _, err := s.q.ExecContext(ctx, query, string(role), principal.String()); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *Postgres) RevokeRole(ctx context.Context, role models.Role, principal id.Principal) error {
	query := `DELETE FROM role_grants WHERE role = $1 AND principal = $2`
	if _, err := s.q.ExecContext(ctx, query, string(role), principal.String()); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}
