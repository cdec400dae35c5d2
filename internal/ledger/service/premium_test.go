package service

import (
	"context"

	"carepool/internal/ledger/models"
	dErrors "carepool/pkg/domain-errors"
)

func (s *ServiceSuite) TestPayPremium() {
	ctx := context.Background()

	s.Run("payment restarts the coverage window from now", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.clock.Advance(100)

		payment, err := s.svc.PayPremium(ctx, alice, pool.ID)
		s.Require().NoError(err)

		s.Equal(uint64(1), uint64(payment.ID))
		s.Equal(testBasePremium, payment.Amount)
		s.Equal(startTick+100, payment.PaidAt)
		s.Equal(startTick+100, payment.PeriodStart)
		s.Equal(startTick+100+models.PremiumCycle, payment.PeriodEnd)
		s.True(payment.Recurring)
		s.Zero(payment.LateFee)

		member, err := s.svc.GetMember(ctx, alice)
		s.Require().NoError(err)
		s.Equal(startTick+100, member.LastPaidAt)
		s.Equal(2*testBasePremium, member.TotalPaid)

		got, err := s.svc.GetPool(ctx, pool.ID)
		s.Require().NoError(err)
		s.Equal(2*testBasePremium, got.Balance)
		s.Equal(2*testBasePremium, got.PremiumsCollected)
	})

	s.Run("payment after a lapse restores standing", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.clock.Advance(models.PremiumCycle + 500)

		status, err := s.svc.CheckCoverageStatus(ctx, alice)
		s.Require().NoError(err)
		s.False(status.GoodStanding)

		_, err = s.svc.PayPremium(ctx, alice, pool.ID)
		s.Require().NoError(err)

		status, err = s.svc.CheckCoverageStatus(ctx, alice)
		s.Require().NoError(err)
		s.True(status.GoodStanding)
	})

	s.Run("non-member is rejected", func() {
		pool := s.createPool()
		_, err := s.svc.PayPremium(ctx, bob, pool.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeMemberNotFound))
	})

	s.Run("closed pool is rejected", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)

		stored, err := s.store.GetPool(ctx, pool.ID)
		s.Require().NoError(err)
		stored.Active = false
		s.Require().NoError(s.store.PutPool(ctx, stored))

		_, err = s.svc.PayPremium(ctx, alice, pool.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePoolInactive))
	})

	s.Run("insufficient funds leave the member untouched", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)

		// Drain alice down to less than one premium.
		balance := s.bank.Balance(alice)
		s.Require().NoError(s.bank.Transfer(ctx, alice, bob, balance-1))

		_, err := s.svc.PayPremium(ctx, alice, pool.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		member, err := s.svc.GetMember(ctx, alice)
		s.Require().NoError(err)
		s.Equal(startTick, member.LastPaidAt)
		s.Equal(testBasePremium, member.TotalPaid)
	})
}
