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

// PayPremium collects the caller's fixed monthly premium into the pool
// treasury and records the covered period. The coverage window is
// [now, now+PremiumCycle); paying early simply restarts the window from now.
func (s *Service) PayPremium(ctx context.Context, caller id.AccountID, poolID id.PoolID) (*models.Payment, error) {
	var payment *models.Payment
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		member, err := st.GetMember(ctx, caller)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeMemberNotFound, "account is not enrolled")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
		}
		if !member.Active {
			return dErrors.New(dErrors.CodeMemberNotFound, "membership is inactive")
		}

		pool, err := st.GetPool(ctx, poolID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodePoolInactive, "no such pool")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
		}
		if !pool.Active {
			return dErrors.New(dErrors.CodePoolInactive, "pool is closed")
		}

		now := s.clock.Now()
		if err := s.treasury.Transfer(ctx, caller, s.treasuryAccount, member.MonthlyPremium); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "cannot cover premium")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "premium transfer failed")
		}

		paymentID, err := st.NextPaymentID(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate payment id")
		}
		payment = &models.Payment{
			ID:          paymentID,
			Member:      caller,
			Pool:        poolID,
			Amount:      member.MonthlyPremium,
			PaidAt:      now,
			PeriodStart: now,
			PeriodEnd:   now + models.PremiumCycle,
			Method:      "treasury-transfer",
			Recurring:   true,
		}
		if err := st.PutPayment(ctx, payment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write payment")
		}

		member.LastPaidAt = now
		member.TotalPaid += member.MonthlyPremium
		if err := st.PutMember(ctx, member); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member")
		}

		creditPool(pool, member.MonthlyPremium)
		if err := st.PutPool(ctx, pool); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pool")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PremiumsCollected.Add(float64(payment.Amount))
	}
	s.logAudit(ctx, "premium_paid",
		"pool", uint64(poolID),
		"amount", payment.Amount,
		"payment", uint64(payment.ID),
	)
	return payment, nil
}
