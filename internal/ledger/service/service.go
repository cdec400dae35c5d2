// Package service implements the pool and claims ledger: enrollment, premium
// collection, provider registration, and the claim state machine.
//
// Every mutating operation validates all of its preconditions, performs any
// treasury transfer, and only then writes records, all inside one
// LedgerTx.RunInTx call, so a failure anywhere leaves no partial state.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports"
	"carepool/internal/platform/metrics"
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
)

// StatsCache is an optional read-through cache for the platform rollup.
type StatsCache interface {
	Get(ctx context.Context) (models.Stats, bool)
	Set(ctx context.Context, stats models.Stats)
}

type Service struct {
	store    ports.Store
	tx       ports.LedgerTx
	treasury ports.Treasury
	clock    clock.Clock

	// owner is the platform owner; treasuryAccount holds pool funds and
	// provider stakes.
	owner           id.AccountID
	treasuryAccount id.AccountID

	logger     *slog.Logger
	metrics    *metrics.Metrics
	audit      ports.AuditPublisher
	statsCache StatsCache
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithStatsCache(cache StatsCache) Option {
	return func(s *Service) { s.statsCache = cache }
}

func New(store ports.Store, tx ports.LedgerTx, treasury ports.Treasury, clk clock.Clock,
	owner, treasuryAccount id.AccountID, opts ...Option) (*Service, error) {

	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("ledger tx is required")
	}
	if treasury == nil {
		return nil, fmt.Errorf("treasury is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if owner.IsZero() || treasuryAccount.IsZero() {
		return nil, fmt.Errorf("owner and treasury accounts are required")
	}

	svc := &Service{
		store:           store,
		tx:              tx,
		treasury:        treasury,
		clock:           clk,
		owner:           owner,
		treasuryAccount: treasuryAccount,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) logAudit(ctx context.Context, action string, attrs ...any) {
	ports.LogAudit(ctx, s.logger, s.audit, action, attrs...)
}
