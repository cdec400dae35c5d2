// Package domain defines typed identifiers shared across the ledger.
//
// Distinct types prevent accidentally passing a pool identifier where a claim
// identifier is expected; the compiler enforces what the wire cannot.
package domain

import (
	"strconv"
	"strings"

	dErrors "carepool/pkg/domain-errors"
)

// AccountID is the platform-supplied caller identifier. The host environment
// authenticates callers, so an AccountID is trusted once it reaches a service.
type AccountID string

// Typed sequence identifiers. Allocated by the store as part of the same
// atomic step as the record they number.
type (
	PoolID    uint64
	ClaimID   uint64
	PaymentID uint64
)

func (a AccountID) String() string { return string(a) }

// IsZero reports whether the account identifier is empty.
func (a AccountID) IsZero() bool { return a == "" }

const maxAccountIDLen = 128

// ParseAccountID validates an externally supplied account identifier.
// Identifiers are opaque, but empty or absurdly long values are rejected at
// the trust boundary.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id is required")
	}
	if len(s) > maxAccountIDLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id too long")
	}
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id contains invalid characters")
		}
	}
	return AccountID(s), nil
}

// ParsePoolID parses a pool identifier from its decimal wire form.
func ParsePoolID(s string) (PoolID, error) {
	n, err := parseSequence(s)
	if err != nil {
		return 0, err
	}
	return PoolID(n), nil
}

// ParseClaimID parses a claim identifier from its decimal wire form.
func ParseClaimID(s string) (ClaimID, error) {
	n, err := parseSequence(s)
	if err != nil {
		return 0, err
	}
	return ClaimID(n), nil
}

// ParsePaymentID parses a payment identifier from its decimal wire form.
func ParsePaymentID(s string) (PaymentID, error) {
	n, err := parseSequence(s)
	if err != nil {
		return 0, err
	}
	return PaymentID(n), nil
}

// parseSequence rejects zero: sequences start at 1, so zero always means
// "never allocated".
func parseSequence(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid identifier")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "identifier must be positive")
	}
	return n, nil
}
