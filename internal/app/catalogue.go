package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/recobot/internal/adapter/storage"
	cataloguerepo "github.com/heartmarshall/recobot/internal/adapter/storage/catalogue"
	"github.com/heartmarshall/recobot/internal/config"
	"github.com/heartmarshall/recobot/internal/service/catalogue"
)

// Catalogue is an opened, migrated catalogue store with its service.
type Catalogue struct {
	DB      *storage.DB
	Service *catalogue.Service
}

// OpenCatalogue opens the configured store, applies pending migrations and
// builds the catalogue service on top of it. Callers must Close it.
func OpenCatalogue(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Catalogue, error) {
	db, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := storage.Migrate(ctx, db, logger); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrate: %w", err)
	}

	svc := catalogue.NewService(logger, cataloguerepo.New(db), storage.NewTxManager(db))

	return &Catalogue{DB: db, Service: svc}, nil
}

// Close releases the underlying store.
func (c *Catalogue) Close() error {
	return c.DB.Close()
}
