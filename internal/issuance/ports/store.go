package ports

import (
	"context"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
)

// Store is the engine's persisted state: rules, claims, vouchers, role grants
// and the singleton engine state. Lookups return sentinel.ErrNotFound when a
// key is absent; write-once inserts return sentinel.ErrAlreadyUsed on a
// duplicate key.
type Store interface {
	LoadState(ctx context.Context) (*models.EngineState, error)
	SaveState(ctx context.Context, state *models.EngineState) error

	FindRule(ctx context.Context, disasterID id.DisasterID) (*models.AllocationRule, error)
	SaveRule(ctx context.Context, rule *models.AllocationRule) error

	FindClaim(ctx context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error)
	CreateClaim(ctx context.Context, claim *models.VictimClaim) error

	FindVoucher(ctx context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error)
	CreateVoucher(ctx context.Context, voucher *models.IssuedVoucher) error

	HasRole(ctx context.Context, role models.Role, principal id.Principal) (bool, error)
	GrantRole(ctx context.Context, role models.Role, principal id.Principal) error
	RevokeRole(ctx context.Context, role models.Role, principal id.Principal) error
}

// StoreTx runs fn as one serialized, all-or-nothing unit. Calls never overlap,
// and writes made through the Store handed to fn become visible only if fn
// returns nil. The context passed to fn carries the transaction so other
// writers on the same database (the audit outbox) can join it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
