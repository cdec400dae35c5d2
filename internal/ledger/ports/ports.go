// Package ports defines the interfaces the ledger service depends on.
// Interfaces live here when consumed across packages to avoid duplication.
package ports

//go:generate mockgen -destination=mocks/mocks.go -package=mocks carepool/internal/ledger/ports Treasury,AuditPublisher

import (
	"context"
	"log/slog"

	"carepool/internal/audit"
	"carepool/internal/ledger/models"
	id "carepool/pkg/domain"
	"carepool/pkg/requestcontext"
)

// Store is the ledger's record store. Reads return sentinel.ErrNotFound
// (possibly wrapped) for missing keys; writes upsert whole records.
//
// Mutating operations always run against a Store handed to them by
// LedgerTx.RunInTx, so implementations only need per-call correctness, not
// cross-call atomicity.
type Store interface {
	GetMember(ctx context.Context, account id.AccountID) (*models.Member, error)
	PutMember(ctx context.Context, member *models.Member) error

	GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error)
	PutPool(ctx context.Context, pool *models.Pool) error

	GetClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
	PutClaim(ctx context.Context, claim *models.Claim) error

	GetProvider(ctx context.Context, account id.AccountID) (*models.Provider, error)
	PutProvider(ctx context.Context, provider *models.Provider) error

	PutPayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsByMember(ctx context.Context, account id.AccountID) ([]*models.Payment, error)

	// Sequence allocation. Each call returns the next identifier and advances
	// the counter; inside RunInTx this is atomic with the record write it
	// numbers.
	NextPoolID(ctx context.Context) (id.PoolID, error)
	NextClaimID(ctx context.Context) (id.ClaimID, error)
	NextPaymentID(ctx context.Context) (id.PaymentID, error)

	// Global accumulators.
	IncrTotalMembers(ctx context.Context) error
	IncrClaimsProcessed(ctx context.Context) error
	Stats(ctx context.Context) (models.Stats, error)
}

// LedgerTx provides the transactional boundary for ledger mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse
// lock. Every public mutating operation executes entirely inside one RunInTx
// call, which gives the serialized all-or-nothing semantics the invariants
// assume.
type LedgerTx interface {
	RunInTx(ctx context.Context, fn func(s Store) error) error
}

// Treasury is the external value-transfer service. Transfer moves funds
// between accounts atomically: it either fully succeeds or returns an error
// having moved nothing. A shortfall on the source account surfaces as
// sentinel.ErrInsufficientFunds.
type Treasury interface {
	Transfer(ctx context.Context, from, to id.AccountID, amount uint64) error
}

// AuditPublisher emits audit events for ledger mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RiskAssessor would produce and persist models.RiskAssessment records.
// The record type and its sequence counter exist in the data model but no
// operation touches them; this interface marks the seam where a risk engine
// would plug in. No implementers exist.
type RiskAssessor interface {
	Assess(ctx context.Context, account id.AccountID) (*models.RiskAssessment, error)
}

// EmergencyFundManager would manage models.EmergencyFund records. Dormant for
// the same reason as RiskAssessor. No implementers exist.
type EmergencyFundManager interface {
	Fund(ctx context.Context, fundID uint64) (*models.EmergencyFund, error)
}

// LogAudit logs an audit event to both the structured logger and the audit
// publisher if available. Shared by all ledger operations.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, action string, attrs ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", action, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, action, args...)
	}

	if publisher == nil {
		return
	}
	event := audit.Event{
		Action: action,
		Actor:  requestcontext.Caller(ctx).String(),
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", action, "error", err)
	}
}
