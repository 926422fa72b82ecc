package storage_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/heartmarshall/recobot/internal/adapter/storage"
	"github.com/heartmarshall/recobot/internal/adapter/storage/testhelper"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := testhelper.SetupSQLite(t)

	if err := storage.Migrate(context.Background(), db, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var n int
	if err := db.SQL().QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestMigrate_DeduplicatesLegacyRows(t *testing.T) {
	ctx := context.Background()
	db := testhelper.SetupSQLite(t)

	// Recreate the pre-index layout with duplicate registrations.
	stmts := []string{
		`DROP INDEX ux_posts_message_id`,
		`DROP INDEX ix_posts_category`,
		`DELETE FROM goose_db_version WHERE version_id = 2`,
		`INSERT INTO posts (message_id, hashtags, title, category) VALUES (1, '#книги', 'first', 'книги')`,
		`INSERT INTO posts (message_id, hashtags, title, category) VALUES (1, '#книги', 'second', 'книги')`,
		`INSERT INTO posts (message_id, hashtags, title, category) VALUES (2, NULL, NULL, 'фильмы')`,
	}
	for _, s := range stmts {
		if _, err := db.SQL().ExecContext(ctx, s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	if err := storage.Migrate(ctx, db, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var title string
	if err := db.SQL().QueryRowContext(ctx, `SELECT title FROM posts WHERE message_id = 1`).Scan(&title); err != nil {
		t.Fatalf("select: %v", err)
	}
	if title != "first" {
		t.Errorf("kept %q, want earliest row", title)
	}

	var n int
	if err := db.SQL().QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestDialectFor(t *testing.T) {
	if d, err := storage.DialectFor("sqlite"); err != nil || d.Name != "sqlite" {
		t.Errorf("sqlite: got (%v, %v)", d.Name, err)
	}
	if d, err := storage.DialectFor("postgres"); err != nil || d.Name != "postgres" {
		t.Errorf("postgres: got (%v, %v)", d.Name, err)
	}
	if _, err := storage.DialectFor("mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
