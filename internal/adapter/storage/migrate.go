package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies all pending schema migrations for the database dialect.
// It is idempotent: an up-to-date schema is left untouched.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	dir, err := fs.Sub(migrationsFS, "migrations/"+db.dialect.Name)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", db.dialect.Name, err)
	}

	provider, err := goose.NewProvider(db.dialect.goose, db.sql, dir)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	for _, r := range results {
		logger.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}

	return nil
}
