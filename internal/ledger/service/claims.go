package service

import (
	"context"
	"errors"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports"
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
	"carepool/pkg/platform/sentinel"
)

// SubmitClaim opens a claim against a pool for treatment by a verified
// provider. Non-emergency claims are rejected until the waiting period since
// enrollment has elapsed.
func (s *Service) SubmitClaim(ctx context.Context, caller id.AccountID, poolID id.PoolID,
	providerAccount id.AccountID, amount uint64, category models.ClaimCategory,
	treatedAt clock.Tick, evidence string) (*models.Claim, error) {

	if !category.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidCoverage, "unknown category %q", category)
	}
	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "claim amount must be positive")
	}
	if amount > models.MaxClaimAmount {
		return nil, dErrors.New(dErrors.CodeCoverageLimit, "claim amount above platform maximum")
	}

	var claim *models.Claim
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		now := s.clock.Now()

		member, err := st.GetMember(ctx, caller)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
		}
		if !GoodStanding(member, now) {
			return dErrors.New(dErrors.CodeMemberNotFound, "caller is not a member in good standing")
		}

		provider, err := st.GetProvider(ctx, providerAccount)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider")
		}
		if provider == nil || !provider.Verified {
			return dErrors.New(dErrors.CodeInvalidProvider, "provider is missing or unverified")
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

		if category != models.CategoryEmergency && !WaitingElapsed(member, now) {
			return dErrors.New(dErrors.CodeWaitingPeriod, "waiting period has not elapsed")
		}

		claimID, err := st.NextClaimID(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate claim id")
		}
		claim = &models.Claim{
			ID:          claimID,
			Claimant:    caller,
			Pool:        poolID,
			Provider:    providerAccount,
			Amount:      amount,
			Category:    category,
			TreatedAt:   treatedAt,
			SubmittedAt: now,
			Status:      models.ClaimSubmitted,
			Evidence:    evidence,
		}
		if err := st.PutClaim(ctx, claim); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write claim")
		}

		member.ClaimsSubmitted++
		if err := st.PutMember(ctx, member); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ClaimsSubmitted.Inc()
	}
	s.logAudit(ctx, "claim_submitted",
		"claim", uint64(claim.ID),
		"pool", uint64(poolID),
		"amount", amount,
		"category", string(category),
	)
	return claim, nil
}

// ReviewClaim settles a Submitted claim with a single terminal decision.
// Approval pays the claimant from the pool treasury in the same transition;
// there is no approved-but-unpaid state, and a settled claim can never be
// reviewed again.
func (s *Service) ReviewClaim(ctx context.Context, caller id.AccountID, claimID id.ClaimID,
	approve bool, approvalAmount uint64, denialReason string) (*models.Claim, error) {

	var claim *models.Claim
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		var err error
		claim, err = st.GetClaim(ctx, claimID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeClaimNotFound, "no such claim")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
		}
		if claim.Status != models.ClaimSubmitted {
			return dErrors.New(dErrors.CodeClaimAlreadyReviewed, "claim already settled")
		}

		pool, err := st.GetPool(ctx, claim.Pool)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
		}

		if err := s.authorizeReviewer(ctx, st, caller, pool); err != nil {
			return err
		}

		now := s.clock.Now()
		claim.Reviewer = caller
		claim.ReviewedAt = now

		if !approve {
			// Denial writes the claim only: no funds move and no counters
			// beyond the state change itself.
			claim.Status = models.ClaimDenied
			claim.DenialReason = denialReason
			if err := st.PutClaim(ctx, claim); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim")
			}
			return nil
		}

		if approvalAmount == 0 || approvalAmount > claim.Amount {
			return dErrors.New(dErrors.CodeInvalidAmount, "approval amount out of range")
		}
		if err := debitPool(pool, approvalAmount); err != nil {
			return err
		}

		member, err := st.GetMember(ctx, claim.Claimant)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claimant")
		}

		if err := s.treasury.Transfer(ctx, s.treasuryAccount, claim.Claimant, approvalAmount); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "treasury cannot cover payout")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "payout transfer failed")
		}

		claim.Status = models.ClaimApproved
		claim.ApprovedAmount = approvalAmount
		claim.PaidAt = now
		if err := st.PutClaim(ctx, claim); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claim")
		}

		member.ClaimsApproved++
		member.TotalApproved += approvalAmount
		if err := st.PutMember(ctx, member); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update claimant")
		}
		if err := st.PutPool(ctx, pool); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pool")
		}
		if err := st.IncrClaimsProcessed(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to bump processed total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "denied"
	if approve {
		outcome = "approved"
	}
	if s.metrics != nil {
		s.metrics.ClaimsProcessed.WithLabelValues(outcome).Inc()
	}
	s.logAudit(ctx, "claim_reviewed",
		"claim", uint64(claimID),
		"outcome", outcome,
		"amount", claim.ApprovedAmount,
	)
	return claim, nil
}

// authorizeReviewer admits the platform owner, the pool's manager, or any
// verified provider.
func (s *Service) authorizeReviewer(ctx context.Context, st ports.Store,
	caller id.AccountID, pool *models.Pool) error {

	if caller == s.owner || caller == pool.Manager {
		return nil
	}
	provider, err := st.GetProvider(ctx, caller)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reviewer")
	}
	if provider != nil && provider.Verified {
		return nil
	}
	return dErrors.New(dErrors.CodeNotAuthorized, "caller may not review claims")
}

// GetClaim returns the claim record, or nil if no such claim exists.
func (s *Service) GetClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
	}
	return claim, nil
}
