package service

import (
	"context"
	"fmt"

	"carepool/internal/ledger/models"
	dErrors "carepool/pkg/domain-errors"
)

func (s *ServiceSuite) TestJoinPool() {
	ctx := context.Background()

	s.Run("enrollment collects the first premium", func() {
		pool := s.createPool()
		before := s.bank.Balance(alice)

		member := s.enroll(alice, pool.ID)

		s.Equal(testBasePremium, member.MonthlyPremium)
		s.Equal(startTick, member.EnrolledAt)
		s.Equal(startTick, member.LastPaidAt)
		s.Equal(testBasePremium, member.TotalPaid)
		s.True(member.Active)
		s.Equal(models.EnrollmentHealthScore, member.HealthScore)

		s.Equal(before-testBasePremium, s.bank.Balance(alice))
		s.Equal(testBasePremium, s.bank.Balance(treasuryAcct))

		got, err := s.svc.GetPool(ctx, pool.ID)
		s.Require().NoError(err)
		s.Equal(uint64(1), got.MemberCount)
		s.Equal(testBasePremium, got.Balance)
		s.Equal(testBasePremium, got.PremiumsCollected)

		stats, err := s.svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), stats.TotalMembers)

		s.Contains(s.auditActions(), "member_enrolled")
	})

	s.Run("second enrollment anywhere is rejected", func() {
		first := s.createPool()
		second := s.createPool()
		s.enroll(alice, first.ID)

		_, err := s.svc.JoinPool(ctx, alice, second.ID, "Again", 30, models.TierBasic, nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMember))
	})

	s.Run("unknown tier is rejected", func() {
		pool := s.createPool()
		_, err := s.svc.JoinPool(ctx, alice, pool.ID, "A", 30, "platinum", nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCoverage))
	})

	s.Run("age outside bounds is rejected", func() {
		pool := s.createPool()
		_, err := s.svc.JoinPool(ctx, alice, pool.ID, "A", models.MinMemberAge-1, models.TierBasic, nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
		_, err = s.svc.JoinPool(ctx, alice, pool.ID, "A", models.MaxMemberAge+1, models.TierBasic, nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("too many distinct conditions are rejected", func() {
		pool := s.createPool()
		conditions := make([]string, models.MaxPreexistingConditions+1)
		for i := range conditions {
			conditions[i] = fmt.Sprintf("condition-%d", i)
		}
		_, err := s.svc.JoinPool(ctx, alice, pool.ID, "A", 30, models.TierBasic, conditions, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("duplicate conditions collapse before the limit applies", func() {
		pool := s.createPool()
		conditions := []string{"Asthma", " asthma ", "asthma", "diabetes", "ASTHMA", "Diabetes"}
		member, err := s.svc.JoinPool(ctx, alice, pool.ID, "A", 30, models.TierBasic, conditions, "", "")
		s.Require().NoError(err)
		s.Equal([]string{"asthma", "diabetes"}, member.PreexistingConditions)
	})

	s.Run("absent pool is rejected", func() {
		_, err := s.svc.JoinPool(ctx, alice, 404, "A", 30, models.TierBasic, nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodePoolInactive))
	})

	s.Run("insufficient funds leave no partial state", func() {
		pool := s.createPool()

		_, err := s.svc.JoinPool(ctx, "pauper", pool.ID, "P", 30, models.TierBasic, nil, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		member, err := s.svc.GetMember(ctx, "pauper")
		s.Require().NoError(err)
		s.Nil(member)

		got, err := s.svc.GetPool(ctx, pool.ID)
		s.Require().NoError(err)
		s.Zero(got.MemberCount)
		s.Zero(got.Balance)

		stats, err := s.svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Zero(stats.TotalMembers)
	})

	s.Run("premium scales with age and tier", func() {
		pool := s.createPool()
		member, err := s.svc.JoinPool(ctx, bob, pool.ID, "B", 65, models.TierPremium, nil, "", "")
		s.Require().NoError(err)
		// 2_000_000 * 150 * 100 * 200 / 10^6
		s.Equal(uint64(6_000_000), member.MonthlyPremium)
	})
}

func (s *ServiceSuite) TestGetMember() {
	got, err := s.svc.GetMember(context.Background(), alice)
	s.NoError(err)
	s.Nil(got)
}
