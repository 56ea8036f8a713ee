package models

import (
	"math/bits"

	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
)

const (
	// MaxMetadataLength bounds the opaque metadata recorded with a claim.
	MaxMetadataLength = 256

	// ClaimWindow is the number of heights between a claim and its expiration.
	ClaimWindow id.Height = 1440

	DefaultMaxPerVictim uint64 = 1000
	DefaultMinSeverity  uint64 = 3
)

// AllocationRule is the payout formula for one disaster. MaxVictims and
// FundsAllocated are informational and not enforced.
type AllocationRule struct {
	DisasterID         id.DisasterID
	BaseAmount         uint64
	SeverityMultiplier uint64
	MaxVictims         uint64
	FundsAllocated     uint64
}

// Amount computes base + severity*multiplier without wrapping.
func (r AllocationRule) Amount(severity uint64) (uint64, error) {
	hi, product := bits.Mul64(severity, r.SeverityMultiplier)
	if hi != 0 {
		return 0, dErrors.New(dErrors.CodeInvalidAmount, "allocation amount overflows")
	}
	sum, carry := bits.Add64(r.BaseAmount, product, 0)
	if carry != 0 {
		return 0, dErrors.New(dErrors.CodeInvalidAmount, "allocation amount overflows")
	}
	return sum, nil
}

// VictimClaim is the permanent record that a beneficiary received a voucher
// for a disaster. Its existence blocks any further issuance for the pair.
type VictimClaim struct {
	Beneficiary id.Principal
	DisasterID  id.DisasterID
	Amount      uint64
	ClaimedAt   id.Height
	ExpiresAt   id.Height
	Metadata    []byte
}

// NewClaim builds a claim recorded at height, expiring ClaimWindow later.
func NewClaim(beneficiary id.Principal, disasterID id.DisasterID, amount uint64, height id.Height, metadata []byte) (*VictimClaim, error) {
	expires, carry := bits.Add64(uint64(height), uint64(ClaimWindow), 0)
	if carry != 0 {
		return nil, dErrors.New(dErrors.CodeInvalidExpiration, "claim expiration overflows")
	}
	return &VictimClaim{
		Beneficiary: beneficiary,
		DisasterID:  disasterID,
		Amount:      amount,
		ClaimedAt:   height,
		ExpiresAt:   id.Height(expires),
		Metadata:    append([]byte(nil), metadata...),
	}, nil
}

// ExpiredAt reports whether the claim's window has passed at height h.
// Expiry is informational: an expired claim still blocks reissuance.
func (c *VictimClaim) ExpiredAt(h id.Height) bool {
	return h >= c.ExpiresAt
}

// IssuedVoucher is the append-only record of one successful issuance.
type IssuedVoucher struct {
	ID         id.VoucherID
	Recipient  id.Principal
	Amount     uint64
	DisasterID id.DisasterID
	IssuedAt   id.Height
}

// EngineState is the singleton configuration and counter record.
type EngineState struct {
	Admin         id.Principal
	Paused        bool
	TotalIssued   uint64
	MaxPerVictim  uint64
	MinSeverity   uint64
	NextVoucherID id.VoucherID
}

// NewEngineState returns the initial state for a fresh deployment.
func NewEngineState(admin id.Principal, maxPerVictim, minSeverity uint64) *EngineState {
	return &EngineState{
		Admin:         admin,
		MaxPerVictim:  maxPerVictim,
		MinSeverity:   minSeverity,
		NextVoucherID: 1,
	}
}

// Clone returns an independent copy.
func (s *EngineState) Clone() *EngineState {
	c := *s
	return &c
}

// WithIssuance returns the state after recording one voucher of amount,
// together with the id assigned to it.
func (s *EngineState) WithIssuance(amount uint64) (*EngineState, id.VoucherID, error) {
	total, carry := bits.Add64(s.TotalIssued, amount, 0)
	if carry != 0 {
		return nil, 0, dErrors.New(dErrors.CodeInvalidAmount, "total issued overflows")
	}
	if s.NextVoucherID == id.VoucherID(^uint64(0)) {
		return nil, 0, dErrors.New(dErrors.CodeInvalidAmount, "voucher id space exhausted")
	}
	next := s.Clone()
	next.TotalIssued = total
	assigned := next.NextVoucherID
	next.NextVoucherID++
	return next, assigned, nil
}

// IssueResult is returned by a successful issuance.
type IssueResult struct {
	Amount     uint64
	VoucherID  id.VoucherID
	DisasterID id.DisasterID
	Recipient  id.Principal
	ClaimedAt  id.Height
	ExpiresAt  id.Height
}

// IssueRequest carries one issuance call.
type IssueRequest struct {
	Caller     id.Principal
	Recipient  id.Principal
	DisasterID id.DisasterID
	Metadata   []byte
}

// Role is a grantable permission set held by a non-admin principal.
type Role string

const (
	// RoleIssuer may issue vouchers and nothing else.
	RoleIssuer Role = "issuer"
)

// ParseRole validates a role name from the transport boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleIssuer:
		return RoleIssuer, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
}
