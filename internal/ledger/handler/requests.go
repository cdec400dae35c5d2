package handler

import (
	"carepool/internal/ledger/models"
	"carepool/pkg/clock"
)

type joinPoolRequest struct {
	Name             string   `json:"name"`
	Age              uint     `json:"age"`
	Tier             string   `json:"tier"`
	Conditions       []string `json:"preexisting_conditions,omitempty"`
	EmergencyContact string   `json:"emergency_contact,omitempty"`
	Location         string   `json:"location,omitempty"`
}

type submitClaimRequest struct {
	Pool      uint64     `json:"pool"`
	Provider  string     `json:"provider"`
	Amount    uint64     `json:"amount"`
	Category  string     `json:"category"`
	TreatedAt clock.Tick `json:"treated_at"`
	Evidence  string     `json:"evidence,omitempty"`
}

type reviewClaimRequest struct {
	Approve        bool   `json:"approve"`
	ApprovalAmount uint64 `json:"approval_amount,omitempty"`
	DenialReason   string `json:"denial_reason,omitempty"`
}

type registerProviderRequest struct {
	Name           string   `json:"name"`
	License        string   `json:"license"`
	Specialization string   `json:"specialization,omitempty"`
	Location       string   `json:"location,omitempty"`
	Services       []string `json:"services,omitempty"`
	Stake          uint64   `json:"stake"`
}

type coverageLimitRequest struct {
	Category string `json:"category"`
	Limit    uint64 `json:"limit"`
}

type createPoolRequest struct {
	Name              string                 `json:"name"`
	TargetDemographic string                 `json:"target_demographic,omitempty"`
	CoverageLimits    []coverageLimitRequest `json:"coverage_limits,omitempty"`
	BasePremium       uint64                 `json:"base_premium"`
	ReserveRatio      uint                   `json:"reserve_ratio"`
	Manager           string                 `json:"manager,omitempty"`
}

func (r createPoolRequest) limits() []models.CoverageLimit {
	out := make([]models.CoverageLimit, 0, len(r.CoverageLimits))
	for _, l := range r.CoverageLimits {
		out = append(out, models.CoverageLimit{
			Category: models.ClaimCategory(l.Category),
			Limit:    l.Limit,
		})
	}
	return out
}
