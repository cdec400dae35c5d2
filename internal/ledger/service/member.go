package service

import (
	"context"
	"errors"

	"carepool/internal/ledger/models"
	"carepool/internal/ledger/ports"
	id "carepool/pkg/domain"
	dErrors "carepool/pkg/domain-errors"
	"carepool/pkg/platform/sentinel"
	strutil "carepool/pkg/platform/strings"
)

// Enrollment is one record per account, platform-wide: a second JoinPool call
// for the same account fails regardless of pool.

// JoinPool enrolls the caller in a pool. The first monthly premium is
// transferred to the pool treasury as part of enrollment; the premium itself
// is computed once here and never recomputed.
func (s *Service) JoinPool(ctx context.Context, caller id.AccountID, poolID id.PoolID,
	name string, age uint, tier models.CoverageTier, conditions []string,
	emergencyContact, location string) (*models.Member, error) {

	if !tier.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidCoverage, "unknown coverage tier %q", tier)
	}
	if age < models.MinMemberAge || age > models.MaxMemberAge {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "age out of range")
	}
	// The condition limit applies to distinct conditions.
	conditions = strutil.DedupeAndTrimLower(conditions)
	if len(conditions) > models.MaxPreexistingConditions {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "too many pre-existing conditions")
	}

	var member *models.Member
	err := s.tx.RunInTx(ctx, func(st ports.Store) error {
		if existing, err := st.GetMember(ctx, caller); err == nil && existing != nil {
			return dErrors.New(dErrors.CodeAlreadyMember, "account already enrolled")
		} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check membership")
		}

		pool, err := st.GetPool(ctx, poolID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodePoolInactive, "no such pool")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
		}
		if !pool.Active {
			return dErrors.New(dErrors.CodePoolInactive, "pool is not accepting members")
		}

		premium := ComputePremium(pool.BasePremium, age, models.EnrollmentHealthScore, tier)
		now := s.clock.Now()

		if err := s.treasury.Transfer(ctx, caller, s.treasuryAccount, premium); err != nil {
			if errors.Is(err, sentinel.ErrInsufficientFunds) {
				return dErrors.New(dErrors.CodeInsufficientFunds, "cannot cover first premium")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "premium transfer failed")
		}

		member = &models.Member{
			Account:               caller,
			Name:                  name,
			Age:                   age,
			Tier:                  tier,
			MonthlyPremium:        premium,
			EnrolledAt:            now,
			LastPaidAt:            now,
			TotalPaid:             premium,
			Active:                true,
			HealthScore:           models.EnrollmentHealthScore,
			PreexistingConditions: conditions,
			EmergencyContact:      emergencyContact,
			Location:              location,
		}
		if err := st.PutMember(ctx, member); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write member")
		}

		pool.MemberCount++
		creditPool(pool, premium)
		if err := st.PutPool(ctx, pool); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pool")
		}
		if err := st.IncrTotalMembers(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to bump member total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MembersCreated.Inc()
		s.metrics.PremiumsCollected.Add(float64(member.MonthlyPremium))
	}
	s.logAudit(ctx, "member_enrolled",
		"pool", uint64(poolID),
		"premium", member.MonthlyPremium,
	)
	return member, nil
}

// GetMember returns the member record, or nil if the account never enrolled.
func (s *Service) GetMember(ctx context.Context, account id.AccountID) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	return member, nil
}
