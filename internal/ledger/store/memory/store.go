// Package memory implements the ledger store with in-memory maps.
package memory

import (
	"context"
	"fmt"
	"sync"

	"carepool/internal/ledger/models"
	id "carepool/pkg/domain"
	"carepool/pkg/platform/sentinel"
)

// Store keeps all ledger tables in memory. Records are copied on both read
// and write so callers can stage mutations without publishing them; nothing
// is visible until PutX is called.
type Store struct {
	mu        sync.RWMutex
	members   map[id.AccountID]*models.Member
	pools     map[id.PoolID]*models.Pool
	claims    map[id.ClaimID]*models.Claim
	providers map[id.AccountID]*models.Provider
	payments  map[id.PaymentID]*models.Payment

	// Sequences start at 1; zero means "never allocated".
	nextPool    uint64
	nextClaim   uint64
	nextPayment uint64
	// Dormant sequences for risk assessments and emergency funds. Present in
	// the persisted layout, advanced by nothing.
	nextAssessment uint64
	nextFund       uint64

	totalMembers    uint64
	claimsProcessed uint64
	// reserves is never credited by any current operation.
	reserves uint64
}

func New() *Store {
	return &Store{
		members:        make(map[id.AccountID]*models.Member),
		pools:          make(map[id.PoolID]*models.Pool),
		claims:         make(map[id.ClaimID]*models.Claim),
		providers:      make(map[id.AccountID]*models.Provider),
		payments:       make(map[id.PaymentID]*models.Payment),
		nextPool:       1,
		nextClaim:      1,
		nextPayment:    1,
		nextAssessment: 1,
		nextFund:       1,
	}
}

func (s *Store) GetMember(_ context.Context, account id.AccountID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[account]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", account, sentinel.ErrNotFound)
	}
	return copyMember(m), nil
}

func (s *Store) PutMember(_ context.Context, member *models.Member) error {
	if member == nil {
		return fmt.Errorf("member is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.Account] = copyMember(member)
	return nil
}

func (s *Store) GetPool(_ context.Context, poolID id.PoolID) (*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool %d: %w", poolID, sentinel.ErrNotFound)
	}
	return copyPool(p), nil
}

func (s *Store) PutPool(_ context.Context, pool *models.Pool) error {
	if pool == nil {
		return fmt.Errorf("pool is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[pool.ID] = copyPool(pool)
	return nil
}

func (s *Store) GetClaim(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %d: %w", claimID, sentinel.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) PutClaim(_ context.Context, claim *models.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *claim
	s.claims[claim.ID] = &cp
	return nil
}

func (s *Store) GetProvider(_ context.Context, account id.AccountID) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[account]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", account, sentinel.ErrNotFound)
	}
	return copyProvider(p), nil
}

func (s *Store) PutProvider(_ context.Context, provider *models.Provider) error {
	if provider == nil {
		return fmt.Errorf("provider is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[provider.Account] = copyProvider(provider)
	return nil
}

func (s *Store) PutPayment(_ context.Context, payment *models.Payment) error {
	if payment == nil {
		return fmt.Errorf("payment is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *Store) ListPaymentsByMember(_ context.Context, account id.AccountID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.Member == account {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) NextPoolID(_ context.Context) (id.PoolID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextPool
	s.nextPool++
	return id.PoolID(n), nil
}

func (s *Store) NextClaimID(_ context.Context) (id.ClaimID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextClaim
	s.nextClaim++
	return id.ClaimID(n), nil
}

func (s *Store) NextPaymentID(_ context.Context) (id.PaymentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextPayment
	s.nextPayment++
	return id.PaymentID(n), nil
}

func (s *Store) IncrTotalMembers(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalMembers++
	return nil
}

func (s *Store) IncrClaimsProcessed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimsProcessed++
	return nil
}

func (s *Store) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Stats{
		TotalMembers:    s.totalMembers,
		TotalPools:      s.nextPool - 1,
		TotalClaims:     s.nextClaim - 1,
		ClaimsProcessed: s.claimsProcessed,
		Reserves:        s.reserves,
	}, nil
}

func copyMember(m *models.Member) *models.Member {
	cp := *m
	cp.PreexistingConditions = append([]string(nil), m.PreexistingConditions...)
	return &cp
}

func copyPool(p *models.Pool) *models.Pool {
	cp := *p
	cp.CoverageLimits = append([]models.CoverageLimit(nil), p.CoverageLimits...)
	return &cp
}

func copyProvider(p *models.Provider) *models.Provider {
	cp := *p
	cp.Services = append([]string(nil), p.Services...)
	return &cp
}
