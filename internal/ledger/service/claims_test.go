package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports/mocks"
	memstore "carepool/internal/ledger/store/memory"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
)

const testClaimAmount = uint64(1_500_000)

// claimFixture enrolls alice, verifies clinic, clears the waiting period, and
// submits one general claim. The pool holds exactly one premium.
func (s *ServiceSuite) claimFixture() (id.PoolID, id.ClaimID) {
	pool := s.createPool()
	s.enroll(alice, pool.ID)
	s.verifiedProvider(clinic)
	s.pastWaitingPeriod()

	claim, err := s.svc.SubmitClaim(context.Background(), alice, pool.ID, clinic,
		testClaimAmount, models.CategoryGeneral, s.clock.Now()-10, "invoice #42")
	s.Require().NoError(err)
	return pool.ID, claim.ID
}

func (s *ServiceSuite) TestSubmitClaim() {
	ctx := context.Background()

	s.Run("submission opens a claim and bumps the counter", func() {
		poolID, claimID := s.claimFixture()

		claim, err := s.svc.GetClaim(ctx, claimID)
		s.Require().NoError(err)
		s.Equal(models.ClaimSubmitted, claim.Status)
		s.Equal(alice, claim.Claimant)
		s.Equal(poolID, claim.Pool)
		s.Equal(clinic, claim.Provider)
		s.Equal(testClaimAmount, claim.Amount)
		s.Equal(s.clock.Now(), claim.SubmittedAt)
		s.Equal("invoice #42", claim.Evidence)
		s.Zero(claim.ApprovedAmount)

		member, err := s.svc.GetMember(ctx, alice)
		s.Require().NoError(err)
		s.Equal(uint64(1), member.ClaimsSubmitted)
		s.Zero(member.ClaimsApproved)
	})

	s.Run("unknown category is rejected", func() {
		_, err := s.svc.SubmitClaim(ctx, alice, 1, clinic, 100, "chiropractic", 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCoverage))
	})

	s.Run("zero amount is rejected", func() {
		_, err := s.svc.SubmitClaim(ctx, alice, 1, clinic, 0, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("amount above the platform maximum is rejected", func() {
		_, err := s.svc.SubmitClaim(ctx, alice, 1, clinic,
			models.MaxClaimAmount+1, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeCoverageLimit))
	})

	s.Run("non-member is rejected", func() {
		pool := s.createPool()
		s.verifiedProvider(clinic)
		_, err := s.svc.SubmitClaim(ctx, bob, pool.ID, clinic, 100, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeMemberNotFound))
	})

	s.Run("lapsed member is rejected", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)
		s.clock.Advance(models.PremiumCycle)

		_, err := s.svc.SubmitClaim(ctx, alice, pool.ID, clinic, 100, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeMemberNotFound))
	})

	s.Run("unverified provider is rejected", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		_, err := s.svc.RegisterProvider(ctx, clinic, "C", "L", "", "", nil, models.MinProviderStake)
		s.Require().NoError(err)
		s.pastWaitingPeriod()

		_, err = s.svc.SubmitClaim(ctx, alice, pool.ID, clinic, 100, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidProvider))
	})

	s.Run("waiting period blocks non-emergency claims", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)

		_, err := s.svc.SubmitClaim(ctx, alice, pool.ID, clinic, 100, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeWaitingPeriod))
	})

	s.Run("emergency claims bypass the waiting period", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)

		claim, err := s.svc.SubmitClaim(ctx, alice, pool.ID, clinic, 100,
			models.CategoryEmergency, 0, "")
		s.Require().NoError(err)
		s.Equal(models.ClaimSubmitted, claim.Status)
	})

	s.Run("absent pool is rejected", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)
		s.pastWaitingPeriod()

		_, err := s.svc.SubmitClaim(ctx, alice, 404, clinic, 100, models.CategoryGeneral, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodePoolInactive))
	})
}

func (s *ServiceSuite) TestReviewClaimApproval() {
	ctx := context.Background()

	s.Run("approval pays the claimant in the same transition", func() {
		poolID, claimID := s.claimFixture()
		approval := uint64(1_000_000)
		claimantBefore := s.bank.Balance(alice)

		claim, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, approval, "")
		s.Require().NoError(err)

		s.Equal(models.ClaimApproved, claim.Status)
		s.Equal(approval, claim.ApprovedAmount)
		s.Equal(ownerAcct, claim.Reviewer)
		s.Equal(s.clock.Now(), claim.ReviewedAt)
		s.Equal(s.clock.Now(), claim.PaidAt)

		s.Equal(claimantBefore+approval, s.bank.Balance(alice))

		pool, err := s.svc.GetPool(ctx, poolID)
		s.Require().NoError(err)
		s.Equal(testBasePremium-approval, pool.Balance)
		s.Equal(approval, pool.ClaimsPaid)
		s.Equal(pool.PremiumsCollected-pool.ClaimsPaid, pool.Balance)

		member, err := s.svc.GetMember(ctx, alice)
		s.Require().NoError(err)
		s.Equal(uint64(1), member.ClaimsApproved)
		s.Equal(approval, member.TotalApproved)

		stats, err := s.svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), stats.ClaimsProcessed)
	})

	s.Run("full approval is allowed", func() {
		_, claimID := s.claimFixture()
		claim, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, testClaimAmount, "")
		s.Require().NoError(err)
		s.Equal(testClaimAmount, claim.ApprovedAmount)
	})

	s.Run("zero approval amount is rejected", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, 0, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("approval above the claimed amount is rejected", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, testClaimAmount+1, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	s.Run("approval beyond the pool balance is rejected untouched", func() {
		pool := s.createPool()
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)
		s.pastWaitingPeriod()

		// Claim more than the pool holds.
		claim, err := s.svc.SubmitClaim(ctx, alice, pool.ID, clinic,
			3*testBasePremium, models.CategoryGeneral, 0, "")
		s.Require().NoError(err)

		_, err = s.svc.ReviewClaim(ctx, ownerAcct, claim.ID, true, 3*testBasePremium, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		// Still open for a smaller approval.
		got, err := s.svc.GetClaim(ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(models.ClaimSubmitted, got.Status)
	})
}

func (s *ServiceSuite) TestReviewClaimDenial() {
	ctx := context.Background()

	poolID, claimID := s.claimFixture()
	claimantBefore := s.bank.Balance(alice)

	claim, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, false, 0, "insufficient documentation")
	s.Require().NoError(err)

	s.Equal(models.ClaimDenied, claim.Status)
	s.Equal("insufficient documentation", claim.DenialReason)
	s.Equal(ownerAcct, claim.Reviewer)
	s.Zero(claim.ApprovedAmount)
	s.Zero(claim.PaidAt)

	// Denial writes the claim only: nothing else moves.
	s.Equal(claimantBefore, s.bank.Balance(alice))

	pool, err := s.svc.GetPool(ctx, poolID)
	s.Require().NoError(err)
	s.Equal(testBasePremium, pool.Balance)
	s.Zero(pool.ClaimsPaid)

	member, err := s.svc.GetMember(ctx, alice)
	s.Require().NoError(err)
	s.Zero(member.ClaimsApproved)

	stats, err := s.svc.PlatformStats(ctx)
	s.Require().NoError(err)
	s.Zero(stats.ClaimsProcessed)
}

func (s *ServiceSuite) TestReviewClaimGuards() {
	ctx := context.Background()

	s.Run("unknown claim", func() {
		_, err := s.svc.ReviewClaim(ctx, ownerAcct, 404, true, 100, "")
		s.True(dErrors.HasCode(err, dErrors.CodeClaimNotFound))
	})

	s.Run("settled claim cannot be reviewed again", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, false, 0, "no")
		s.Require().NoError(err)

		_, err = s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, 100, "")
		s.True(dErrors.HasCode(err, dErrors.CodeClaimAlreadyReviewed))
	})

	s.Run("arbitrary members may not review", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, alice, claimID, false, 0, "self-review")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("pool manager may review", func() {
		pool, err := s.svc.CreatePool(ctx, ownerAcct, "Managed", "", nil, testBasePremium, 10, bob)
		s.Require().NoError(err)
		s.enroll(alice, pool.ID)
		s.verifiedProvider(clinic)
		s.pastWaitingPeriod()
		claim, err := s.svc.SubmitClaim(ctx, alice, pool.ID, clinic, 100, models.CategoryGeneral, 0, "")
		s.Require().NoError(err)

		_, err = s.svc.ReviewClaim(ctx, bob, claim.ID, false, 0, "manager says no")
		s.NoError(err)
	})

	s.Run("verified providers may review", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, clinic, claimID, false, 0, "provider says no")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestReviewClaimPayoutFailureRollsBack() {
	ctx := context.Background()
	poolID, claimID := s.claimFixture()

	ctrl := gomock.NewController(s.T())
	bank := mocks.NewMockTreasury(ctrl)
	bank.EXPECT().
		Transfer(gomock.Any(), treasuryAcct, alice, testClaimAmount).
		Return(errors.New("wire outage"))

	svc, err := New(s.store, memstore.NewTx(s.store), bank, s.clock, ownerAcct, treasuryAcct)
	s.Require().NoError(err)

	_, err = svc.ReviewClaim(ctx, ownerAcct, claimID, true, testClaimAmount, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// The aborted transaction leaves every record as it was.
	claim, err := s.svc.GetClaim(ctx, claimID)
	s.Require().NoError(err)
	s.Equal(models.ClaimSubmitted, claim.Status)
	s.Empty(string(claim.Reviewer))

	pool, err := s.svc.GetPool(ctx, poolID)
	s.Require().NoError(err)
	s.Equal(testBasePremium, pool.Balance)
	s.Zero(pool.ClaimsPaid)

	member, err := s.svc.GetMember(ctx, alice)
	s.Require().NoError(err)
	s.Zero(member.ClaimsApproved)
}

func (s *ServiceSuite) TestGetClaim() {
	got, err := s.svc.GetClaim(context.Background(), 404)
	s.NoError(err)
	s.Nil(got)
}
