// Package domain holds the typed identifiers shared by every module.
//
// Identifiers are parsed once at trust boundaries (HTTP handlers, config,
// adapters) and passed around as distinct types so a disaster id can never be
// handed to a voucher lookup by accident.
package domain

import (
	"strconv"
	"strings"

	dErrors "relief/pkg/domain-errors"
)

// MaxPrincipalLength bounds principal identities accepted from callers.
const MaxPrincipalLength = 128

// Principal identifies an account: an administrator, an issuer, a beneficiary
// or the engine's own custodial account.
type Principal string

// DisasterID names a declared emergency event.
type DisasterID uint64

// VoucherID is the ascending identifier of an issued voucher. Zero is never assigned.
type VoucherID uint64

// Height is a reading of the engine's logical clock.
type Height uint64

// ParsePrincipal validates an external principal identity.
// Accepted characters are ASCII letters, digits and . _ : - so identities
// remain safe as log fields, cache keys and URL path segments.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if len(s) > MaxPrincipalLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is too long")
	}
	for i := 0; i < len(s); i++ {
		if !isPrincipalByte(s[i]) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
		}
	}
	return Principal(s), nil
}

func isPrincipalByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == ':', c == '-':
		return true
	}
	return false
}

// String returns the raw identity.
func (p Principal) String() string {
	return string(p)
}

// IsNil reports whether the principal is unset.
func (p Principal) IsNil() bool {
	return p == ""
}

// ParseDisasterID parses a base-10 disaster identifier.
func ParseDisasterID(s string) (DisasterID, error) {
	v, err := parseUint(s, "disaster id")
	if err != nil {
		return 0, err
	}
	return DisasterID(v), nil
}

func (d DisasterID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// ParseVoucherID parses a base-10 voucher identifier; zero is rejected.
func ParseVoucherID(s string) (VoucherID, error) {
	v, err := parseUint(s, "voucher id")
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "voucher id must be positive")
	}
	return VoucherID(v), nil
}

func (v VoucherID) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (h Height) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

func parseUint(s, field string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	return v, nil
}
