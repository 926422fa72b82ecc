// Package catalogue implements the recommendation catalogue: registering
// channel posts, picking random recommendations and reporting counts.
package catalogue

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/recobot/internal/domain"
)

// Registration sources, used as log and metric labels.
const (
	SourceCommand  = "command"
	SourceChannel  = "channel"
	SourceForward  = "forward"
	SourceAdminAPI = "admin_api"
	SourceCLI      = "cli"
)

type catalogueRepo interface {
	InsertIfAbsent(ctx context.Context, e *domain.Entry) (bool, error)
	Exists(ctx context.Context, messageID int64) (bool, error)
	GetByMessageID(ctx context.Context, messageID int64) (*domain.Entry, error)
	Random(ctx context.Context, c domain.Category) (*domain.Entry, error)
	CountByCategory(ctx context.Context) (map[domain.Category]int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides catalogue operations.
type Service struct {
	repo catalogueRepo
	tx   txManager
	log  *slog.Logger
}

// NewService creates a new catalogue Service.
func NewService(
	log *slog.Logger,
	repo catalogueRepo,
	tx txManager,
) *Service {
	return &Service{
		repo: repo,
		tx:   tx,
		log:  log.With("service", "catalogue"),
	}
}
