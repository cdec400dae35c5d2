package handler

import (
	"carepool/internal/ledger/models"
	"carepool/internal/ledger/service"
	"carepool/pkg/clock"
)

type memberResponse struct {
	Account               string     `json:"account"`
	Name                  string     `json:"name"`
	Age                   uint       `json:"age"`
	Tier                  string     `json:"tier"`
	MonthlyPremium        uint64     `json:"monthly_premium"`
	EnrolledAt            clock.Tick `json:"enrolled_at"`
	LastPaidAt            clock.Tick `json:"last_paid_at"`
	TotalPaid             uint64     `json:"total_paid"`
	ClaimsSubmitted       uint64     `json:"claims_submitted"`
	ClaimsApproved        uint64     `json:"claims_approved"`
	TotalApproved         uint64     `json:"total_approved"`
	Active                bool       `json:"active"`
	HealthScore           uint       `json:"health_score"`
	PreexistingConditions []string   `json:"preexisting_conditions,omitempty"`
	EmergencyContact      string     `json:"emergency_contact,omitempty"`
	Location              string     `json:"location,omitempty"`
}

func fromMember(m *models.Member) *memberResponse {
	return &memberResponse{
		Account:               m.Account.String(),
		Name:                  m.Name,
		Age:                   m.Age,
		Tier:                  string(m.Tier),
		MonthlyPremium:        m.MonthlyPremium,
		EnrolledAt:            m.EnrolledAt,
		LastPaidAt:            m.LastPaidAt,
		TotalPaid:             m.TotalPaid,
		ClaimsSubmitted:       m.ClaimsSubmitted,
		ClaimsApproved:        m.ClaimsApproved,
		TotalApproved:         m.TotalApproved,
		Active:                m.Active,
		HealthScore:           m.HealthScore,
		PreexistingConditions: m.PreexistingConditions,
		EmergencyContact:      m.EmergencyContact,
		Location:              m.Location,
	}
}

type coverageLimitResponse struct {
	Category string `json:"category"`
	Limit    uint64 `json:"limit"`
}

type poolResponse struct {
	ID                uint64                  `json:"id"`
	Name              string                  `json:"name"`
	TargetDemographic string                  `json:"target_demographic,omitempty"`
	MemberCount       uint64                  `json:"member_count"`
	Balance           uint64                  `json:"balance"`
	PremiumsCollected uint64                  `json:"premiums_collected"`
	ClaimsPaid        uint64                  `json:"claims_paid"`
	CoverageLimits    []coverageLimitResponse `json:"coverage_limits,omitempty"`
	BasePremium       uint64                  `json:"base_premium"`
	Active            bool                    `json:"active"`
	CreatedAt         clock.Tick              `json:"created_at"`
	Manager           string                  `json:"manager"`
	ReserveRatio      uint                    `json:"reserve_ratio"`
}

func fromPool(p *models.Pool) *poolResponse {
	limits := make([]coverageLimitResponse, 0, len(p.CoverageLimits))
	for _, l := range p.CoverageLimits {
		limits = append(limits, coverageLimitResponse{Category: string(l.Category), Limit: l.Limit})
	}
	return &poolResponse{
		ID:                uint64(p.ID),
		Name:              p.Name,
		TargetDemographic: p.TargetDemographic,
		MemberCount:       p.MemberCount,
		Balance:           p.Balance,
		PremiumsCollected: p.PremiumsCollected,
		ClaimsPaid:        p.ClaimsPaid,
		CoverageLimits:    limits,
		BasePremium:       p.BasePremium,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		Manager:           p.Manager.String(),
		ReserveRatio:      p.ReserveRatio,
	}
}

type claimResponse struct {
	ID             uint64     `json:"id"`
	Claimant       string     `json:"claimant"`
	Pool           uint64     `json:"pool"`
	Provider       string     `json:"provider"`
	Amount         uint64     `json:"amount"`
	Category       string     `json:"category"`
	TreatedAt      clock.Tick `json:"treated_at"`
	SubmittedAt    clock.Tick `json:"submitted_at"`
	Status         string     `json:"status"`
	ApprovedAmount uint64     `json:"approved_amount,omitempty"`
	DenialReason   string     `json:"denial_reason,omitempty"`
	Evidence       string     `json:"evidence,omitempty"`
	Reviewer       string     `json:"reviewer,omitempty"`
	ReviewedAt     clock.Tick `json:"reviewed_at,omitempty"`
	PaidAt         clock.Tick `json:"paid_at,omitempty"`
}

func fromClaim(c *models.Claim) *claimResponse {
	return &claimResponse{
		ID:             uint64(c.ID),
		Claimant:       c.Claimant.String(),
		Pool:           uint64(c.Pool),
		Provider:       c.Provider.String(),
		Amount:         c.Amount,
		Category:       string(c.Category),
		TreatedAt:      c.TreatedAt,
		SubmittedAt:    c.SubmittedAt,
		Status:         string(c.Status),
		ApprovedAmount: c.ApprovedAmount,
		DenialReason:   c.DenialReason,
		Evidence:       c.Evidence,
		Reviewer:       c.Reviewer.String(),
		ReviewedAt:     c.ReviewedAt,
		PaidAt:         c.PaidAt,
	}
}

type providerResponse struct {
	Account         string     `json:"account"`
	Name            string     `json:"name"`
	License         string     `json:"license"`
	Specialization  string     `json:"specialization,omitempty"`
	Location        string     `json:"location,omitempty"`
	Verified        bool       `json:"verified"`
	Services        []string   `json:"services,omitempty"`
	ClaimsProcessed uint64     `json:"claims_processed"`
	SuccessRate     uint       `json:"success_rate"`
	RegisteredAt    clock.Tick `json:"registered_at"`
	Active          bool       `json:"active"`
	Stake           uint64     `json:"stake"`
}

func fromProvider(p *models.Provider) *providerResponse {
	return &providerResponse{
		Account:         p.Account.String(),
		Name:            p.Name,
		License:         p.License,
		Specialization:  p.Specialization,
		Location:        p.Location,
		Verified:        p.Verified,
		Services:        p.Services,
		ClaimsProcessed: p.ClaimsProcessed,
		SuccessRate:     p.SuccessRate,
		RegisteredAt:    p.RegisteredAt,
		Active:          p.Active,
		Stake:           p.Stake,
	}
}

type paymentResponse struct {
	ID          uint64     `json:"id"`
	Member      string     `json:"member"`
	Pool        uint64     `json:"pool"`
	Amount      uint64     `json:"amount"`
	PaidAt      clock.Tick `json:"paid_at"`
	PeriodStart clock.Tick `json:"period_start"`
	PeriodEnd   clock.Tick `json:"period_end"`
	Method      string     `json:"method"`
	LateFee     uint64     `json:"late_fee"`
	Recurring   bool       `json:"recurring"`
}

func fromPayment(p *models.Payment) *paymentResponse {
	return &paymentResponse{
		ID:          uint64(p.ID),
		Member:      p.Member.String(),
		Pool:        uint64(p.Pool),
		Amount:      p.Amount,
		PaidAt:      p.PaidAt,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		Method:      p.Method,
		LateFee:     p.LateFee,
		Recurring:   p.Recurring,
	}
}

type coverageStatusResponse struct {
	Enrolled       bool       `json:"enrolled"`
	Active         bool       `json:"active"`
	GoodStanding   bool       `json:"good_standing"`
	PaidThrough    clock.Tick `json:"paid_through"`
	MonthlyPremium uint64     `json:"monthly_premium"`
}

func fromCoverageStatus(s service.CoverageStatus) coverageStatusResponse {
	return coverageStatusResponse{
		Enrolled:       s.Enrolled,
		Active:         s.Active,
		GoodStanding:   s.GoodStanding,
		PaidThrough:    s.PaidThrough,
		MonthlyPremium: s.MonthlyPremium,
	}
}

type eligibilityResponse struct {
	Eligible       bool   `json:"eligible"`
	GoodStanding   bool   `json:"good_standing"`
	WaitingElapsed bool   `json:"waiting_elapsed"`
	Probability    uint   `json:"approval_probability"`
	MaxClaim       uint64 `json:"max_claim"`
}

func fromEligibility(e service.Eligibility) eligibilityResponse {
	return eligibilityResponse{
		Eligible:       e.Eligible,
		GoodStanding:   e.GoodStanding,
		WaitingElapsed: e.WaitingElapsed,
		Probability:    e.Probability,
		MaxClaim:       e.MaxClaim,
	}
}

type statsResponse struct {
	TotalMembers    uint64 `json:"total_members"`
	TotalPools      uint64 `json:"total_pools"`
	TotalClaims     uint64 `json:"total_claims"`
	ClaimsProcessed uint64 `json:"claims_processed"`
	Reserves        uint64 `json:"reserves"`
}

func fromStats(s models.Stats) statsResponse {
	return statsResponse{
		TotalMembers:    s.TotalMembers,
		TotalPools:      s.TotalPools,
		TotalClaims:     s.TotalClaims,
		ClaimsProcessed: s.ClaimsProcessed,
		Reserves:        s.Reserves,
	}
}
