package catalogue

import (
	"context"
	"fmt"

	"github.com/heartmarshall/recobot/internal/domain"
)

// Stats returns per-category entry counts and their total.
func (s *Service) Stats(ctx context.Context) (domain.CatalogueStats, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return domain.CatalogueStats{}, fmt.Errorf("count posts: %w", err)
	}

	stats := domain.CatalogueStats{ByCategory: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
