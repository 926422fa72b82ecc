package catalogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/metrics"
)

// Register validates a manually described post and stores it unless a post
// with the same message id is already registered. Re-registering is a
// successful no-op that never changes the stored entry.
func (s *Service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	entry, err := input.toEntry()
	if err != nil {
		metrics.IngestTotal.WithLabelValues(input.Source, "invalid").Inc()
		return RegisterResult{}, err
	}

	return s.store(ctx, entry, input.Source)
}

// RegisterArgs registers a post from raw "/add" command arguments.
func (s *Service) RegisterArgs(ctx context.Context, args, source string) (RegisterResult, error) {
	return s.Register(ctx, ParseRegisterArgs(args, source))
}

// IsRegistered reports whether a post with messageID is in the catalogue.
func (s *Service) IsRegistered(ctx context.Context, messageID int64) (bool, error) {
	ok, err := s.repo.Exists(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("check post %d: %w", messageID, err)
	}
	return ok, nil
}

// Lookup returns the entry registered for messageID.
// Returns domain.ErrNotFound if there is none.
func (s *Service) Lookup(ctx context.Context, messageID int64) (*domain.Entry, error) {
	return s.repo.GetByMessageID(ctx, messageID)
}

// store inserts entry if absent and returns what the catalogue holds for its
// message id afterwards.
func (s *Service) store(ctx context.Context, entry domain.Entry, source string) (RegisterResult, error) {
	var result RegisterResult

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.repo.InsertIfAbsent(ctx, &entry)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		if created {
			result = RegisterResult{Created: true, Entry: entry}
			return nil
		}

		stored, err := s.repo.GetByMessageID(ctx, entry.MessageID)
		if err != nil {
			return fmt.Errorf("get stored post: %w", err)
		}
		result = RegisterResult{Created: false, Entry: *stored}
		return nil
	})
	if err != nil {
		metrics.IngestTotal.WithLabelValues(source, "error").Inc()
		return RegisterResult{}, err
	}

	if result.Created {
		metrics.IngestTotal.WithLabelValues(source, "created").Inc()
		s.log.InfoContext(ctx, "post registered",
			slog.Int64("message_id", result.Entry.MessageID),
			slog.String("category", result.Entry.Category.String()),
			slog.String("title", result.Entry.Title),
			slog.String("source", source),
		)
	} else {
		metrics.IngestTotal.WithLabelValues(source, "duplicate").Inc()
		s.log.InfoContext(ctx, "post already registered",
			slog.Int64("message_id", result.Entry.MessageID),
			slog.String("source", source),
		)
	}

	return result, nil
}
