package service

import (
	"context"

	"carepool/internal/ledger/models"
	dErrors "carepool/pkg/domain-errors"
)

// PlatformStats returns the global rollup. Served from the stats cache when
// one is configured and warm; recomputed from the store otherwise. Reserves
// stays zero until a fee-skim path exists to credit it.
func (s *Service) PlatformStats(ctx context.Context) (models.Stats, error) {
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx); ok {
			return stats, nil
		}
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform stats")
	}

	if s.statsCache != nil {
		s.statsCache.Set(ctx, stats)
	}
	return stats, nil
}
