package service

import (
	"context"

	"carepool/internal/ledger/models"
	dErrors "carepool/pkg/domain-errors"
)

func (s *ServiceSuite) TestCreatePool() {
	ctx := context.Background()

	s.Run("owner creates a pool with sequential ids", func() {
		first := s.createPool()
		second := s.createPool()
		s.Equal(uint64(1), uint64(first.ID))
		s.Equal(uint64(2), uint64(second.ID))
		s.True(first.Active)
		s.Equal(startTick, first.CreatedAt)
		s.Zero(first.Balance)
		s.Zero(first.MemberCount)
	})

	s.Run("manager defaults to the caller", func() {
		pool := s.createPool()
		s.Equal(ownerAcct, pool.Manager)
	})

	s.Run("explicit manager is kept", func() {
		pool, err := s.svc.CreatePool(ctx, ownerAcct, "Managed", "", nil, testBasePremium, 10, bob)
		s.Require().NoError(err)
		s.Equal(bob, pool.Manager)
	})

	s.Run("non-owner is rejected", func() {
		_, err := s.svc.CreatePool(ctx, alice, "Rogue", "", nil, testBasePremium, 10, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("base premium at the floor is rejected", func() {
		_, err := s.svc.CreatePool(ctx, ownerAcct, "Cheap", "", nil, models.MinPoolPremium, 10, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("reserve ratio above maximum is rejected", func() {
		_, err := s.svc.CreatePool(ctx, ownerAcct, "Hoarder", "", nil, testBasePremium,
			models.MaxReserveRatio+1, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("too many coverage limits are rejected", func() {
		limits := make([]models.CoverageLimit, models.MaxCoverageLimits+1)
		for i := range limits {
			limits[i] = models.CoverageLimit{Category: models.CategoryGeneral, Limit: 1}
		}
		_, err := s.svc.CreatePool(ctx, ownerAcct, "Limited", "", limits, testBasePremium, 10, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCoverage))
	})

	s.Run("unknown limit category is rejected", func() {
		limits := []models.CoverageLimit{{Category: "acupuncture", Limit: 1}}
		_, err := s.svc.CreatePool(ctx, ownerAcct, "Weird", "", limits, testBasePremium, 10, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCoverage))
	})
}

func (s *ServiceSuite) TestGetPool() {
	pool := s.createPool()

	got, err := s.svc.GetPool(context.Background(), pool.ID)
	s.Require().NoError(err)
	s.Equal(pool.ID, got.ID)

	s.Run("absent pool yields nil without error", func() {
		got, err := s.svc.GetPool(context.Background(), 999)
		s.NoError(err)
		s.Nil(got)
	})
}
