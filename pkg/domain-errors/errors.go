// Package dErrors provides coded domain errors for the ledger.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those facts into coded domain errors that transport
// layers can map onto wire responses without string matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies the domain-level failure class of an error.
type Code string

const (
	// Infrastructure and request-shape failures.
	CodeInternal     Code = "internal"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeTimeout      Code = "timeout"

	// Ledger failure classes.
	CodeNotAuthorized        Code = "not_authorized"
	CodeInvalidAmount        Code = "invalid_amount"
	CodeInsufficientFunds    Code = "insufficient_funds"
	CodeMemberNotFound       Code = "member_not_found"
	CodeAlreadyMember        Code = "already_member"
	CodeClaimNotFound        Code = "claim_not_found"
	CodeClaimAlreadyReviewed Code = "claim_already_reviewed"
	CodeInvalidCoverage      Code = "invalid_coverage"
	CodeClaimDenied          Code = "claim_denied"
	CodeWaitingPeriod        Code = "waiting_period"
	CodeCoverageLimit        Code = "coverage_limit"
	CodeInvalidProvider      Code = "invalid_provider"
	CodePoolInactive         Code = "pool_inactive"

	// CodeDuplicateClaim is reserved. No precondition currently raises it;
	// it exists so a future duplicate-submission check has a stable code.
	CodeDuplicateClaim Code = "duplicate_claim"
)

// Error is a coded domain error. It optionally wraps an underlying cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// CodeOf returns the outermost domain code of err, or CodeInternal if err
// carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
