package service

import (
	"carepool/internal/ledger/models"
	"carepool/pkg/clock"
)

// Pricing and risk heuristics. All of these are pure; factors are expressed
// in parts-per-hundred and combined multiplicatively.

// ComputePremium prices a member's monthly premium from the pool's base
// premium, the member's age and health score, and the chosen coverage tier.
//
// The product of base and the three factors is divided by 10^6 once, at the
// end. Dividing after each factor would truncate differently; callers depend
// on this exact result, so the order is load-bearing.
func ComputePremium(base uint64, age, healthScore uint, tier models.CoverageTier) uint64 {
	return base * ageFactor(age) * healthFactor(healthScore) * tierFactor(tier) / 1_000_000
}

func ageFactor(age uint) uint64 {
	switch {
	case age < 30:
		return 80
	case age < 50:
		return 100
	case age < 65:
		return 120
	default:
		return 150
	}
}

func healthFactor(score uint) uint64 {
	switch {
	case score > 80:
		return 80
	case score > 60:
		return 100
	case score > 40:
		return 120
	default:
		return 140
	}
}

func tierFactor(tier models.CoverageTier) uint64 {
	switch tier {
	case models.TierStandard:
		return 150
	case models.TierPremium:
		return 200
	case models.TierEmergency:
		return 120
	default: // TierBasic
		return 100
	}
}

// neutralProbability is returned for unknown members. Callers validate
// membership before quoting, so this is a defensive default only.
const neutralProbability = 50

// ApprovalProbability estimates the chance a claim is approved, 0-100.
// It averages a history factor, an amount factor, and a category factor,
// truncating the average. A nil member yields the neutral default.
func ApprovalProbability(member *models.Member, amount uint64, category models.ClaimCategory) uint {
	if member == nil {
		return neutralProbability
	}

	history := uint64(80)
	if member.ClaimsSubmitted > 0 {
		history = member.ClaimsApproved * 100 / member.ClaimsSubmitted
	}

	var amountFactor uint64
	switch {
	case amount < 10_000_000:
		amountFactor = 90
	case amount < 50_000_000:
		amountFactor = 70
	default:
		amountFactor = 50
	}

	var categoryFactor uint64
	switch category {
	case models.CategoryEmergency:
		categoryFactor = 95
	case models.CategoryPreventive:
		categoryFactor = 90
	default:
		categoryFactor = 80
	}

	return uint((history + amountFactor + categoryFactor) / 3)
}

// GoodStanding reports whether the member's coverage is current: active, and
// the last premium still covers now. Derived on every call, never stored.
func GoodStanding(member *models.Member, now clock.Tick) bool {
	if member == nil || !member.Active {
		return false
	}
	return now < member.LastPaidAt+models.PremiumCycle
}

// WaitingElapsed reports whether the post-enrollment waiting period has
// passed. Emergency claims bypass this; callers apply that exception.
func WaitingElapsed(member *models.Member, now clock.Tick) bool {
	if member == nil {
		return false
	}
	return now > member.EnrolledAt+models.WaitingPeriod
}
