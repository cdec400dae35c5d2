package service

import (
	"context"

	"carepool/internal/ledger/models"
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
)

// CoverageStatus is the derived view of one member's standing. Computed from
// stored timestamps and the current clock on every call; never persisted.
type CoverageStatus struct {
	Enrolled       bool
	Active         bool
	GoodStanding   bool
	PaidThrough    clock.Tick
	MonthlyPremium uint64
}

// Eligibility is the advisory pre-submission view of a prospective claim.
// The claims state machine re-checks good standing and the waiting period
// itself at submission time; the probability is a heuristic, not a promise.
type Eligibility struct {
	Eligible       bool
	GoodStanding   bool
	WaitingElapsed bool
	Probability    uint
	MaxClaim       uint64
}

// CheckCoverageStatus reports a member's current standing. Never fails;
// unknown accounts yield the zero status.
func (s *Service) CheckCoverageStatus(ctx context.Context, account id.AccountID) (CoverageStatus, error) {
	member, err := s.GetMember(ctx, account)
	if err != nil {
		return CoverageStatus{}, err
	}
	if member == nil {
		return CoverageStatus{}, nil
	}
	return CoverageStatus{
		Enrolled:       true,
		Active:         member.Active,
		GoodStanding:   GoodStanding(member, s.clock.Now()),
		PaidThrough:    member.LastPaidAt + models.PremiumCycle,
		MonthlyPremium: member.MonthlyPremium,
	}, nil
}

// ClaimEligibility composes good standing, the waiting period, and the
// emergency exception into an advisory eligibility verdict. Never fails;
// unknown accounts get the neutral probability and are ineligible.
func (s *Service) ClaimEligibility(ctx context.Context, account id.AccountID,
	amount uint64, category models.ClaimCategory) (Eligibility, error) {

	member, err := s.GetMember(ctx, account)
	if err != nil {
		return Eligibility{}, err
	}

	now := s.clock.Now()
	elig := Eligibility{
		GoodStanding:   GoodStanding(member, now),
		WaitingElapsed: WaitingElapsed(member, now),
		Probability:    ApprovalProbability(member, amount, category),
		MaxClaim:       models.MaxClaimAmount,
	}
	waitingOK := elig.WaitingElapsed || category == models.CategoryEmergency
	elig.Eligible = elig.GoodStanding && waitingOK
	return elig, nil
}
