package service

import (
	"context"

	"carepool/internal/ledger/models"
)

func (s *ServiceSuite) TestCheckCoverageStatus() {
	ctx := context.Background()

	s.Run("unknown account yields the zero status", func() {
		status, err := s.svc.CheckCoverageStatus(ctx, "stranger")
		s.Require().NoError(err)
		s.False(status.Enrolled)
		s.False(status.GoodStanding)
		s.Zero(status.MonthlyPremium)
	})

	s.Run("enrolled member in good standing", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)

		status, err := s.svc.CheckCoverageStatus(ctx, alice)
		s.Require().NoError(err)
		s.True(status.Enrolled)
		s.True(status.Active)
		s.True(status.GoodStanding)
		s.Equal(startTick+models.PremiumCycle, status.PaidThrough)
		s.Equal(testBasePremium, status.MonthlyPremium)
	})

	s.Run("standing is derived from the clock, not stored", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.clock.Advance(models.PremiumCycle)

		status, err := s.svc.CheckCoverageStatus(ctx, alice)
		s.Require().NoError(err)
		s.True(status.Enrolled)
		s.False(status.GoodStanding)
	})
}

func (s *ServiceSuite) TestClaimEligibility() {
	ctx := context.Background()

	s.Run("unknown account is ineligible with neutral probability", func() {
		elig, err := s.svc.ClaimEligibility(ctx, "stranger", 100, models.CategoryGeneral)
		s.Require().NoError(err)
		s.False(elig.Eligible)
		s.Equal(uint(50), elig.Probability)
		s.Equal(models.MaxClaimAmount, elig.MaxClaim)
	})

	s.Run("waiting member is ineligible for general claims", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)

		elig, err := s.svc.ClaimEligibility(ctx, alice, 100, models.CategoryGeneral)
		s.Require().NoError(err)
		s.True(elig.GoodStanding)
		s.False(elig.WaitingElapsed)
		s.False(elig.Eligible)
	})

	s.Run("emergency bypasses the waiting period", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)

		elig, err := s.svc.ClaimEligibility(ctx, alice, 100, models.CategoryEmergency)
		s.Require().NoError(err)
		s.False(elig.WaitingElapsed)
		s.True(elig.Eligible)
	})

	s.Run("member past the wait is eligible", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.pastWaitingPeriod()

		elig, err := s.svc.ClaimEligibility(ctx, alice, 100, models.CategoryGeneral)
		s.Require().NoError(err)
		s.True(elig.Eligible)
		// No history, small amount, general category.
		s.Equal(uint(83), elig.Probability)
	})

	s.Run("lapsed member is ineligible even for emergencies", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.clock.Advance(models.PremiumCycle)

		elig, err := s.svc.ClaimEligibility(ctx, alice, 100, models.CategoryEmergency)
		s.Require().NoError(err)
		s.False(elig.GoodStanding)
		s.False(elig.Eligible)
	})
}
