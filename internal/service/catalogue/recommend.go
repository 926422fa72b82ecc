package catalogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/metrics"
)

// Recommend picks one entry of category c uniformly at random. An empty
// category is a normal outcome (Found=false), not an error.
func (s *Service) Recommend(ctx context.Context, c domain.Category) (Recommendation, error) {
	if !c.IsValid() {
		return Recommendation{}, domain.NewValidationError(domain.ReasonBadCategory, "category", "use one of: "+domain.TagList())
	}

	e, err := s.repo.Random(ctx, c)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.RecommendTotal.WithLabelValues(c.String(), "empty").Inc()
		return Recommendation{Category: c}, nil
	}
	if err != nil {
		metrics.RecommendTotal.WithLabelValues(c.String(), "error").Inc()
		return Recommendation{}, fmt.Errorf("random post: %w", err)
	}

	metrics.RecommendTotal.WithLabelValues(c.String(), "found").Inc()
	return Recommendation{Category: c, Found: true, Entry: *e}, nil
}
