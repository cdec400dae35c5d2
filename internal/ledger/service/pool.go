package service

import (
	"context"
	"errors"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
	"carepool/pkg/platform/sentinel"
)

// CreatePool registers a new insurance pool. Owner-restricted.
func (s *Service) CreatePool(ctx context.Context, caller id.AccountID, name, demographic string,
	limits []models.CoverageLimit, basePremium uint64, reserveRatio uint,
	manager id.AccountID) (*models.Pool, error) {

	if caller != s.owner {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "only the platform owner can create pools")
	}
	if basePremium <= models.MinPoolPremium {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "base premium must exceed the platform minimum")
	}
	if reserveRatio > models.MaxReserveRatio {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "reserve ratio above maximum")
	}
	if len(limits) > models.MaxCoverageLimits {
		return nil, dErrors.New(dErrors.CodeInvalidCoverage, "too many coverage limits")
	}
	for _, l := range limits {
		if !l.Category.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeInvalidCoverage, "unknown category %q", l.Category)
		}
	}
	if manager.IsZero() {
		manager = caller
	}

	var pool *models.Pool
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		poolID, err := st.NextPoolID(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate pool id")
		}
		pool = &models.Pool{
			ID:                poolID,
			Name:              name,
			TargetDemographic: demographic,
			CoverageLimits:    limits,
			BasePremium:       basePremium,
			Active:            true,
			CreatedAt:         s.clock.Now(),
			Manager:           manager,
			ReserveRatio:      reserveRatio,
		}
		if err := st.PutPool(ctx, pool); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write pool")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PoolsCreated.Inc()
	}
	s.logAudit(ctx, "pool_created", "pool", uint64(pool.ID), "manager", manager.String())
	return pool, nil
}

// GetPool returns the pool, or nil if no such pool exists. Queries never fail
// on absent records.
func (s *Service) GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	return pool, nil
}

// creditPool grows the treasury. Balance and the premiums accumulator move
// together so pool.Balance == PremiumsCollected - ClaimsPaid survives.
func creditPool(pool *models.Pool, amount uint64) {
	pool.Balance += amount
	pool.PremiumsCollected += amount
}

// debitPool shrinks the treasury for a claim payout; rejects any debit that
// would drive the balance negative before touching the record.
func debitPool(pool *models.Pool, amount uint64) error {
	if pool.Balance < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds, "pool balance cannot cover payout")
	}
	pool.Balance -= amount
	pool.ClaimsPaid += amount
	return nil
}
