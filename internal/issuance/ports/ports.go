// Package ports declares the capabilities the issuance engine consumes.
// Implementations live in their own modules (ledger, beneficiary, oracle,
// audit adapters) and are injected at wiring time; none of them holds a
// reference back into the engine.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/ports_mocks.go -package=mocks TokenLedger,MintReverser,BeneficiaryRegistry,EventOracle,AuditLogger,Clock

import (
	"context"

	id "relief/pkg/domain"
)

// TokenLedger moves value. Duplicate-mint prevention is the ledger's concern.
type TokenLedger interface {
	Mint(ctx context.Context, recipient id.Principal, amount uint64) error
	Balance(ctx context.Context, account id.Principal) (uint64, error)
}

// MintReverser is implemented by ledgers that can undo a mint. The engine
// uses it to compensate when a call fails after minting.
type MintReverser interface {
	Burn(ctx context.Context, account id.Principal, amount uint64) error
}

// BeneficiaryRegistry answers whether a principal is an eligible beneficiary.
type BeneficiaryRegistry interface {
	IsVerified(ctx context.Context, principal id.Principal) (bool, error)
}

// DisasterStatus is the oracle's view of a declared event.
type DisasterStatus struct {
	Active      bool
	Severity    uint64
	StartHeight id.Height
	EndHeight   id.Height
}

// EventOracle reports disaster status. The engine trusts it completely.
type EventOracle interface {
	DisasterStatus(ctx context.Context, disasterID id.DisasterID) (*DisasterStatus, error)
}

// AuditLogger records a structured event. A failure fails the calling operation.
type AuditLogger interface {
	LogEvent(ctx context.Context, principal id.Principal, eventType string, data map[string]string) error
}

// Clock exposes the host's monotonically increasing logical height.
type Clock interface {
	Height(ctx context.Context) id.Height
}
