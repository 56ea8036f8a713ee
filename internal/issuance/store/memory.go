package store

import (
	"context"
	"sync"
	"time"

	"relief/internal/issuance/models"
	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
	"relief/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

type claimKey struct {
	beneficiary id.Principal
	disasterID  id.DisasterID
}

type grantKey struct {
	role      models.Role
	principal id.Principal
}

// InMemory keeps engine state in process. RunInTx holds one global lock for
// the whole call and stages writes, publishing them only when fn succeeds.
type InMemory struct {
	txMu    sync.Mutex
	timeout time.Duration

	mu       sync.RWMutex
	state    *models.EngineState
	rules    map[id.DisasterID]models.AllocationRule
	claims   map[claimKey]models.VictimClaim
	vouchers map[id.VoucherID]models.IssuedVoucher
	grants   map[grantKey]struct{}
}

// NewInMemory creates a store seeded with the initial engine state.
func NewInMemory(initial *models.EngineState) *InMemory {
	s := &InMemory{
		rules:    make(map[id.DisasterID]models.AllocationRule),
		claims:   make(map[claimKey]models.VictimClaim),
		vouchers: make(map[id.VoucherID]models.IssuedVoucher),
		grants:   make(map[grantKey]struct{}),
	}
	if initial != nil {
		s.state = initial.Clone()
	}
	return s
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := s.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	staged := newMemoryTx(s)
	if err := fn(ctx, staged); err != nil {
		return err
	}
	staged.commit()
	return nil
}

func (s *InMemory) LoadState(_ context.Context) (*models.EngineState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.state.Clone(), nil
}

func (s *InMemory) SaveState(_ context.Context, state *models.EngineState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}

func (s *InMemory) FindRule(_ context.Context, disasterID id.DisasterID) (*models.AllocationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rules[disasterID]; ok {
		return &r, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) SaveRule(_ context.Context, rule *models.AllocationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.DisasterID] = *rule
	return nil
}

func (s *InMemory) FindClaim(_ context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.claims[claimKey{beneficiary, disasterID}]; ok {
		return copyClaim(c), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) CreateClaim(_ context.Context, claim *models.VictimClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := claimKey{claim.Beneficiary, claim.DisasterID}
	if _, ok := s.claims[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.claims[key] = *copyClaim(*claim)
	return nil
}

func (s *InMemory) FindVoucher(_ context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vouchers[voucherID]; ok {
		return &v, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) CreateVoucher(_ context.Context, voucher *models.IssuedVoucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[voucher.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.vouchers[voucher.ID] = *voucher
	return nil
}

func (s *InMemory) HasRole(_ context.Context, role models.Role, principal id.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[grantKey{role, principal}]
	return ok, nil
}

func (s *InMemory) GrantRole(_ context.Context, role models.Role, principal id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey{role, principal}] = struct{}{}
	return nil
}

func (s *InMemory) RevokeRole(_ context.Context, role models.Role, principal id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantKey{role, principal})
	return nil
}

// CountVouchers returns how many vouchers have been recorded.
func (s *InMemory) CountVouchers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vouchers)
}

func copyClaim(c models.VictimClaim) *models.VictimClaim {
	c.Metadata = append([]byte(nil), c.Metadata...)
	return &c
}

// memoryTx overlays staged writes on the committed maps. Reads see the
// transaction's own writes first.
type memoryTx struct {
	base     *InMemory
	state    *models.EngineState
	rules    map[id.DisasterID]models.AllocationRule
	claims   map[claimKey]models.VictimClaim
	vouchers map[id.VoucherID]models.IssuedVoucher
	grants   map[grantKey]bool
}

func newMemoryTx(base *InMemory) *memoryTx {
	return &memoryTx{
		base:     base,
		rules:    make(map[id.DisasterID]models.AllocationRule),
		claims:   make(map[claimKey]models.VictimClaim),
		vouchers: make(map[id.VoucherID]models.IssuedVoucher),
		grants:   make(map[grantKey]bool),
	}
}

func (t *memoryTx) commit() {
	t.base.mu.Lock()
	defer t.base.mu.Unlock()
	if t.state != nil {
		t.base.state = t.state
	}
	for k, v := range t.rules {
		t.base.rules[k] = v
	}
	for k, v := range t.claims {
		t.base.claims[k] = v
	}
	for k, v := range t.vouchers {
		t.base.vouchers[k] = v
	}
	for k, granted := range t.grants {
		if granted {
			t.base.grants[k] = struct{}{}
		} else {
			delete(t.base.grants, k)
		}
	}
}

func (t *memoryTx) LoadState(ctx context.Context) (*models.EngineState, error) {
	if t.state != nil {
		return t.state.Clone(), nil
	}
	return t.base.LoadState(ctx)
}

func (t *memoryTx) SaveState(_ context.Context, state *models.EngineState) error {
	t.state = state.Clone()
	return nil
}

func (t *memoryTx) FindRule(ctx context.Context, disasterID id.DisasterID) (*models.AllocationRule, error) {
	if r, ok := t.rules[disasterID]; ok {
		return &r, nil
	}
	return t.base.FindRule(ctx, disasterID)
}

func (t *memoryTx) SaveRule(_ context.Context, rule *models.AllocationRule) error {
	t.rules[rule.DisasterID] = *rule
	return nil
}

func (t *memoryTx) FindClaim(ctx context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error) {
	if c, ok := t.claims[claimKey{beneficiary, disasterID}]; ok {
		return copyClaim(c), nil
	}
	return t.base.FindClaim(ctx, beneficiary, disasterID)
}

func (t *memoryTx) CreateClaim(ctx context.Context, claim *models.VictimClaim) error {
	if _, err := t.FindClaim(ctx, claim.Beneficiary, claim.DisasterID); err == nil {
		return sentinel.ErrAlreadyUsed
	}
	t.claims[claimKey{claim.Beneficiary, claim.DisasterID}] = *copyClaim(*claim)
	return nil
}

func (t *memoryTx) FindVoucher(ctx context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error) {
	if v, ok := t.vouchers[voucherID]; ok {
		return &v, nil
	}
	return t.base.FindVoucher(ctx, voucherID)
}

func (t *memoryTx) CreateVoucher(ctx context.Context, voucher *models.IssuedVoucher) error {
	if _, err := t.FindVoucher(ctx, voucher.ID); err == nil {
		return sentinel.ErrAlreadyUsed
	}
	t.vouchers[voucher.ID] = *voucher
	return nil
}

func (t *memoryTx) HasRole(ctx context.Context, role models.Role, principal id.Principal) (bool, error) {
	if granted, ok := t.grants[grantKey{role, principal}]; ok {
		return granted, nil
	}
	return t.base.HasRole(ctx, role, principal)
}

func (t *memoryTx) GrantRole(_ context.Context, role models.Role, principal id.Principal) error {
	t.grants[grantKey{role, principal}] = true
	return nil
}

func (t *memoryTx) RevokeRole(_ context.Context, role models.Role, principal id.Principal) error {
	t.grants[grantKey{role, principal}] = false
	return nil
}
