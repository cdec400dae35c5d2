package service

import (
	"context"

	"carepool/internal/ledger/models"
)

// stubStatsCache records cache traffic without a real backend.
type stubStatsCache struct {
	stats models.Stats
	warm  bool
	sets  int
}

func (c *stubStatsCache) Get(context.Context) (models.Stats, bool) {
	return c.stats, c.warm
}

func (c *stubStatsCache) Set(_ context.Context, stats models.Stats) {
	c.stats = stats
	c.sets++
}

func (s *ServiceSuite) TestPlatformStats() {
	ctx := context.Background()

	s.Run("rollup reflects the ledger", func() {
		_, claimID := s.claimFixture()
		_, err := s.svc.ReviewClaim(ctx, ownerAcct, claimID, true, 100, "")
		s.Require().NoError(err)

		stats, err := s.svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), stats.TotalMembers)
		s.Equal(uint64(1), stats.TotalPools)
		s.Equal(uint64(1), stats.TotalClaims)
		s.Equal(uint64(1), stats.ClaimsProcessed)
		s.Zero(stats.Reserves)
	})

	s.Run("warm cache short-circuits the store", func() {
		cache := &stubStatsCache{stats: models.Stats{TotalMembers: 42}, warm: true}
		svc, err := New(s.store, s.svc.tx, s.bank, s.clock, ownerAcct, treasuryAcct,
			WithStatsCache(cache))
		s.Require().NoError(err)

		stats, err := svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(42), stats.TotalMembers)
		s.Zero(cache.sets)
	})

	s.Run("cold cache is filled from the store", func() {
		cache := &stubStatsCache{}
		svc, err := New(s.store, s.svc.tx, s.bank, s.clock, ownerAcct, treasuryAcct,
			WithStatsCache(cache))
		s.Require().NoError(err)

		pool := s.createPool()
		s.enroll(alice, pool.ID)

		stats, err := svc.PlatformStats(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), stats.TotalMembers)
		s.Equal(1, cache.sets)
		s.Equal(stats, cache.stats)
	})
}
