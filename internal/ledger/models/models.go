// Package models defines the ledger's persistent record types and the
// platform constants that bound them. All monetary values are in minor
// currency units; all times are logical ticks (pkg/clock).
package models

import (
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
)

// Platform constants. Periods are logical ticks, amounts minor currency units.
const (
	// PremiumCycle is one monthly coverage cycle.
	PremiumCycle clock.Tick = 4320
	// WaitingPeriod gates non-emergency claims after enrollment.
	WaitingPeriod clock.Tick = 1440

	// MinPoolPremium is the platform floor for a pool's base premium.
	MinPoolPremium uint64 = 1_000_000
	// MaxClaimAmount is the platform-wide ceiling on a single claim.
	MaxClaimAmount uint64 = 1_000_000_000
	// MinProviderStake is the minimum stake posted at provider registration.
	MinProviderStake uint64 = 10_000_000

	// EnrollmentHealthScore is assigned to every member at enrollment.
	EnrollmentHealthScore uint = 75
	// MaxReserveRatio bounds a pool's reserve ratio, in percent.
	MaxReserveRatio uint = 50

	// AdminFeePercent is defined by the platform but applied nowhere.
	// Kept because reserves accounting expects it once fee skimming lands.
	AdminFeePercent uint = 3

	MinMemberAge = 18
	MaxMemberAge = 100

	MaxPreexistingConditions = 5
	MaxCoverageLimits        = 7
	MaxProviderServices      = 10
)

// CoverageTier is one of the four plans affecting premium pricing.
type CoverageTier string

const (
	TierBasic     CoverageTier = "basic"
	TierStandard  CoverageTier = "standard"
	TierPremium   CoverageTier = "premium"
	TierEmergency CoverageTier = "emergency"
)

func (t CoverageTier) IsValid() bool {
	switch t {
	case TierBasic, TierStandard, TierPremium, TierEmergency:
		return true
	}
	return false
}

// ClaimCategory is one of the seven recognized medical categories.
type ClaimCategory string

const (
	CategoryGeneral         ClaimCategory = "general"
	CategoryEmergency       ClaimCategory = "emergency"
	CategoryPreventive      ClaimCategory = "preventive"
	CategorySpecialist      ClaimCategory = "specialist"
	CategoryHospitalization ClaimCategory = "hospitalization"
	CategoryDental          ClaimCategory = "dental"
	CategoryMaternity       ClaimCategory = "maternity"
)

func (c ClaimCategory) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryEmergency, CategoryPreventive, CategorySpecialist,
		CategoryHospitalization, CategoryDental, CategoryMaternity:
		return true
	}
	return false
}

// ClaimStatus is the claim lifecycle state. Approved and Denied are terminal;
// approval pays out in the same transition, so there is no approved-but-unpaid
// state.
type ClaimStatus string

const (
	ClaimSubmitted ClaimStatus = "submitted"
	ClaimApproved  ClaimStatus = "approved"
	ClaimDenied    ClaimStatus = "denied"
)

// Member is one enrolled account. One record per account, never deleted.
// MonthlyPremium is computed once at enrollment and never recomputed.
type Member struct {
	Account        id.AccountID
	Name           string
	Age            uint
	Tier           CoverageTier
	MonthlyPremium uint64
	EnrolledAt     clock.Tick
	LastPaidAt     clock.Tick
	TotalPaid      uint64
	// ClaimsApproved <= ClaimsSubmitted holds after every mutation.
	ClaimsSubmitted       uint64
	ClaimsApproved        uint64
	TotalApproved         uint64
	Active                bool
	HealthScore           uint
	PreexistingConditions []string
	EmergencyContact      string
	Location              string
}

// CoverageLimit caps payouts for one category within a pool.
type CoverageLimit struct {
	Category ClaimCategory
	Limit    uint64
}

// Pool is one insurance pool. Balance == PremiumsCollected - ClaimsPaid holds
// after every mutation; every credit and debit updates both fields together.
type Pool struct {
	ID                id.PoolID
	Name              string
	TargetDemographic string
	MemberCount       uint64
	Balance           uint64
	PremiumsCollected uint64
	ClaimsPaid        uint64
	CoverageLimits    []CoverageLimit
	BasePremium       uint64
	Active            bool
	CreatedAt         clock.Tick
	Manager           id.AccountID
	ReserveRatio      uint
}

// Claim is one claim against a pool. Reviewer, ReviewedAt, ApprovedAmount,
// DenialReason, and PaidAt are meaningful only after review.
type Claim struct {
	ID             id.ClaimID
	Claimant       id.AccountID
	Pool           id.PoolID
	Provider       id.AccountID
	Amount         uint64
	Category       ClaimCategory
	TreatedAt      clock.Tick
	SubmittedAt    clock.Tick
	Status         ClaimStatus
	ApprovedAmount uint64
	DenialReason   string
	Evidence       string
	Reviewer       id.AccountID
	ReviewedAt     clock.Tick
	PaidAt         clock.Tick
}

// Provider is one registered medical provider. Verification is one-way; the
// stake is held for the provider's lifetime.
type Provider struct {
	Account         id.AccountID
	Name            string
	License         string
	Specialization  string
	Location        string
	Verified        bool
	Services        []string
	ClaimsProcessed uint64
	SuccessRate     uint
	RegisteredAt    clock.Tick
	Active          bool
	Stake           uint64
}

// Payment is the immutable record of one premium transfer. LateFee is always
// zero; no late-fee computation exists.
type Payment struct {
	ID          id.PaymentID
	Member      id.AccountID
	Pool        id.PoolID
	Amount      uint64
	PaidAt      clock.Tick
	PeriodStart clock.Tick
	PeriodEnd   clock.Tick
	Method      string
	LateFee     uint64
	Recurring   bool
}

// RiskAssessment exists in the data model but no operation writes or reads
// it. Surfaced as an open extension point (ports.RiskAssessor) rather than
// silently dropped.
type RiskAssessment struct {
	ID         uint64
	Member     id.AccountID
	Score      uint
	AssessedAt clock.Tick
	Notes      string
}

// EmergencyFund exists in the data model but no operation writes or reads it.
// Surfaced as an open extension point (ports.EmergencyFundManager).
type EmergencyFund struct {
	ID        uint64
	Name      string
	Balance   uint64
	CreatedAt clock.Tick
}

// Stats is the read-only platform rollup.
type Stats struct {
	TotalMembers    uint64
	TotalPools      uint64
	TotalClaims     uint64
	ClaimsProcessed uint64
	// Reserves is tracked but never credited by any current operation.
	Reserves uint64
}
