package catalogue

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/metrics"
)

// IngestPost registers a channel post from its raw text. Posts without a
// recognized category tag or a title line are skipped without error.
func (s *Service) IngestPost(ctx context.Context, messageID int64, raw, source string) (IngestResult, error) {
	if messageID <= 0 {
		metrics.IngestTotal.WithLabelValues(source, "invalid").Inc()
		return IngestResult{}, domain.NewValidationError(domain.ReasonBadID, "message_id", "must be a positive number")
	}

	parsed, ok := domain.ParsePost(raw)
	if !ok {
		metrics.IngestTotal.WithLabelValues(source, "skipped").Inc()
		s.log.DebugContext(ctx, "post skipped: no category tag or title",
			slog.Int64("message_id", messageID),
			slog.String("source", source),
		)
		return IngestResult{Skipped: true}, nil
	}

	res, err := s.store(ctx, domain.Entry{
		MessageID: messageID,
		Hashtags:  parsed.TagLine,
		Title:     parsed.Title,
		Category:  parsed.Category,
	}, source)
	if err != nil {
		return IngestResult{}, err
	}

	return IngestResult{Created: res.Created, Entry: res.Entry}, nil
}
