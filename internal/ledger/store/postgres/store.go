// Package postgres implements the ledger store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"carepool/internal/ledger/models"
	id "carepool/pkg/domain"
	"carepool/pkg/platform/sentinel"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same store methods
// serve direct reads and transactional mutations.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists ledger records in PostgreSQL. The zero-value isolation
// level of its methods is whatever the querier provides: a plain *sql.DB for
// reads, a serializable *sql.Tx inside RunInTx.
type Store struct {
	q querier
}

// New constructs a PostgreSQL-backed ledger store over a database handle.
func New(db *sql.DB) *Store {
	return &Store{q: db}
}

func (s *Store) GetMember(ctx context.Context, account id.AccountID) (*models.Member, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT account, name, age, tier, monthly_premium, enrolled_at, last_paid_at,
		       total_paid, claims_submitted, claims_approved, total_approved,
		       active, health_score, preexisting_conditions, emergency_contact, location
		FROM members WHERE account = $1
	`, account.String())

	var m models.Member
	var conditions pq.StringArray
	err := row.Scan(&m.Account, &m.Name, &m.Age, &m.Tier, &m.MonthlyPremium,
		&m.EnrolledAt, &m.LastPaidAt, &m.TotalPaid, &m.ClaimsSubmitted,
		&m.ClaimsApproved, &m.TotalApproved, &m.Active, &m.HealthScore,
		&conditions, &m.EmergencyContact, &m.Location)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("member %s: %w", account, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	m.PreexistingConditions = conditions
	return &m, nil
}

func (s *Store) PutMember(ctx context.Context, m *models.Member) error {
	if m == nil {
		return fmt.Errorf("member is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO members (account, name, age, tier, monthly_premium, enrolled_at,
			last_paid_at, total_paid, claims_submitted, claims_approved, total_approved,
			active, health_score, preexisting_conditions, emergency_contact, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (account) DO UPDATE SET
			last_paid_at = EXCLUDED.last_paid_at,
			total_paid = EXCLUDED.total_paid,
			claims_submitted = EXCLUDED.claims_submitted,
			claims_approved = EXCLUDED.claims_approved,
			total_approved = EXCLUDED.total_approved,
			active = EXCLUDED.active
	`, m.Account.String(), m.Name, m.Age, m.Tier, m.MonthlyPremium, m.EnrolledAt,
		m.LastPaidAt, m.TotalPaid, m.ClaimsSubmitted, m.ClaimsApproved, m.TotalApproved,
		m.Active, m.HealthScore, pq.StringArray(m.PreexistingConditions),
		m.EmergencyContact, m.Location)
	if err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

func (s *Store) GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, target_demographic, member_count, balance, premiums_collected,
		       claims_paid, coverage_limits, base_premium, active, created_at, manager,
		       reserve_ratio
		FROM pools WHERE id = $1
	`, uint64(poolID))

	var p models.Pool
	var limits []byte
	err := row.Scan(&p.ID, &p.Name, &p.TargetDemographic, &p.MemberCount, &p.Balance,
		&p.PremiumsCollected, &p.ClaimsPaid, &limits, &p.BasePremium, &p.Active,
		&p.CreatedAt, &p.Manager, &p.ReserveRatio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pool %d: %w", poolID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get pool: %w", err)
	}
	if len(limits) > 0 {
		if err := json.Unmarshal(limits, &p.CoverageLimits); err != nil {
			return nil, fmt.Errorf("decode coverage limits: %w", err)
		}
	}
	return &p, nil
}

func (s *Store) PutPool(ctx context.Context, p *models.Pool) error {
	if p == nil {
		return fmt.Errorf("pool is required")
	}
	limits, err := json.Marshal(p.CoverageLimits)
	if err != nil {
		return fmt.Errorf("encode coverage limits: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO pools (id, name, target_demographic, member_count, balance,
			premiums_collected, claims_paid, coverage_limits, base_premium, active,
			created_at, manager, reserve_ratio)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			member_count = EXCLUDED.member_count,
			balance = EXCLUDED.balance,
			premiums_collected = EXCLUDED.premiums_collected,
			claims_paid = EXCLUDED.claims_paid,
			active = EXCLUDED.active
	`, uint64(p.ID), p.Name, p.TargetDemographic, p.MemberCount, p.Balance,
		p.PremiumsCollected, p.ClaimsPaid, limits, p.BasePremium, p.Active,
		p.CreatedAt, p.Manager.String(), p.ReserveRatio)
	if err != nil {
		return fmt.Errorf("put pool: %w", err)
	}
	return nil
}

func (s *Store) GetClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, claimant, pool_id, provider, amount, category, treated_at,
		       submitted_at, status, approved_amount, denial_reason, evidence,
		       reviewer, reviewed_at, paid_at
		FROM claims WHERE id = $1
	`, uint64(claimID))

	var c models.Claim
	err := row.Scan(&c.ID, &c.Claimant, &c.Pool, &c.Provider, &c.Amount, &c.Category,
		&c.TreatedAt, &c.SubmittedAt, &c.Status, &c.ApprovedAmount, &c.DenialReason,
		&c.Evidence, &c.Reviewer, &c.ReviewedAt, &c.PaidAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("claim %d: %w", claimID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return &c, nil
}

func (s *Store) PutClaim(ctx context.Context, c *models.Claim) error {
	if c == nil {
		return fmt.Errorf("claim is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO claims (id, claimant, pool_id, provider, amount, category,
			treated_at, submitted_at, status, approved_amount, denial_reason, evidence,
			reviewer, reviewed_at, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			approved_amount = EXCLUDED.approved_amount,
			denial_reason = EXCLUDED.denial_reason,
			reviewer = EXCLUDED.reviewer,
			reviewed_at = EXCLUDED.reviewed_at,
			paid_at = EXCLUDED.paid_at
	`, uint64(c.ID), c.Claimant.String(), uint64(c.Pool), c.Provider.String(),
		c.Amount, c.Category, c.TreatedAt, c.SubmittedAt, c.Status, c.ApprovedAmount,
		c.DenialReason, c.Evidence, c.Reviewer.String(), c.ReviewedAt, c.PaidAt)
	if err != nil {
		return fmt.Errorf("put claim: %w", err)
	}
	return nil
}

func (s *Store) GetProvider(ctx context.Context, account id.AccountID) (*models.Provider, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT account, name, license, specialization, location, verified, services,
		       claims_processed, success_rate, registered_at, active, stake
		FROM providers WHERE account = $1
	`, account.String())

	var p models.Provider
	var services pq.StringArray
	err := row.Scan(&p.Account, &p.Name, &p.License, &p.Specialization, &p.Location,
		&p.Verified, &services, &p.ClaimsProcessed, &p.SuccessRate, &p.RegisteredAt,
		&p.Active, &p.Stake)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("provider %s: %w", account, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	p.Services = services
	return &p, nil
}

func (s *Store) PutProvider(ctx context.Context, p *models.Provider) error {
	if p == nil {
		return fmt.Errorf("provider is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO providers (account, name, license, specialization, location,
			verified, services, claims_processed, success_rate, registered_at, active, stake)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (account) DO UPDATE SET
			verified = EXCLUDED.verified,
			claims_processed = EXCLUDED.claims_processed,
			success_rate = EXCLUDED.success_rate,
			active = EXCLUDED.active
	`, p.Account.String(), p.Name, p.License, p.Specialization, p.Location,
		p.Verified, pq.StringArray(p.Services), p.ClaimsProcessed, p.SuccessRate,
		p.RegisteredAt, p.Active, p.Stake)
	if err != nil {
		return fmt.Errorf("put provider: %w", err)
	}
	return nil
}

func (s *Store) PutPayment(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return fmt.Errorf("payment is required")
	}
	// Payments are immutable; a conflicting id is a bug, so no upsert.
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO payments (id, member, pool_id, amount, paid_at, period_start,
			period_end, method, late_fee, recurring)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, uint64(p.ID), p.Member.String(), uint64(p.Pool), p.Amount, p.PaidAt,
		p.PeriodStart, p.PeriodEnd, p.Method, p.LateFee, p.Recurring)
	if err != nil {
		return fmt.Errorf("put payment: %w", err)
	}
	return nil
}

func (s *Store) ListPaymentsByMember(ctx context.Context, account id.AccountID) ([]*models.Payment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, member, pool_id, amount, paid_at, period_start, period_end,
		       method, late_fee, recurring
		FROM payments WHERE member = $1 ORDER BY id
	`, account.String())
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.Member, &p.Pool, &p.Amount, &p.PaidAt,
			&p.PeriodStart, &p.PeriodEnd, &p.Method, &p.LateFee, &p.Recurring); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (s *Store) NextPoolID(ctx context.Context) (id.PoolID, error) {
	n, err := s.nextSequence(ctx, "pool")
	return id.PoolID(n), err
}

func (s *Store) NextClaimID(ctx context.Context) (id.ClaimID, error) {
	n, err := s.nextSequence(ctx, "claim")
	return id.ClaimID(n), err
}

func (s *Store) NextPaymentID(ctx context.Context) (id.PaymentID, error) {
	n, err := s.nextSequence(ctx, "payment")
	return id.PaymentID(n), err
}

// nextSequence advances a named counter and returns the allocated value.
// Inside RunInTx the row lock from UPDATE orders allocation with the record
// write it numbers.
func (s *Store) nextSequence(ctx context.Context, name string) (uint64, error) {
	var allocated uint64
	err := s.q.QueryRowContext(ctx, `
		UPDATE ledger_sequences SET next = next + 1 WHERE name = $1 RETURNING next - 1
	`, name).Scan(&allocated)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", name, err)
	}
	return allocated, nil
}

func (s *Store) IncrTotalMembers(ctx context.Context) error {
	return s.incrAccumulator(ctx, "total_members")
}

func (s *Store) IncrClaimsProcessed(ctx context.Context) error {
	return s.incrAccumulator(ctx, "claims_processed")
}

func (s *Store) incrAccumulator(ctx context.Context, name string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE ledger_accumulators SET value = value + 1 WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("increment %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("accumulator %s missing: %w", name, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT value FROM ledger_accumulators WHERE name = 'total_members'),
			(SELECT next - 1 FROM ledger_sequences WHERE name = 'pool'),
			(SELECT next - 1 FROM ledger_sequences WHERE name = 'claim'),
			(SELECT value FROM ledger_accumulators WHERE name = 'claims_processed'),
			(SELECT value FROM ledger_accumulators WHERE name = 'reserves')
	`).Scan(&stats.TotalMembers, &stats.TotalPools, &stats.TotalClaims,
		&stats.ClaimsProcessed, &stats.Reserves)
	if err != nil {
		return models.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}
