// Package catalogue implements the catalogue entry repository on top of the
// storage package. The same SQL serves SQLite and PostgreSQL.
package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/recobot/internal/adapter/storage"
	"github.com/heartmarshall/recobot/internal/domain"
)

const table = "posts"

var entryColumns = []string{
	"id",
	"message_id",
	"COALESCE(hashtags, '')",
	"COALESCE(title, '')",
	"COALESCE(category, '')",
}

// Repo provides catalogue entry persistence.
type Repo struct {
	db *storage.DB
}

// New creates a new catalogue repository.
func New(db *storage.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// InsertIfAbsent stores e unless an entry with the same MessageID exists.
// The check and the insert are one statement backed by the unique index on
// message_id, so concurrent registrations of one post store a single row.
// Returns true when a row was created; e.ID is set in that case.
func (r *Repo) InsertIfAbsent(ctx context.Context, e *domain.Entry) (bool, error) {
	query, args, err := r.db.Builder().
		Insert(table).
		Columns("message_id", "hashtags", "title", "category").
		Values(e.MessageID, e.Hashtags, e.Title, string(e.Category)).
		Suffix("ON CONFLICT (message_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	err = storage.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.MapError(err, "post", e.MessageID)
	}

	e.ID = id
	return true, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Exists reports whether a post with messageID is stored.
func (r *Repo) Exists(ctx context.Context, messageID int64) (bool, error) {
	query, args, err := r.db.Builder().
		Select("1").
		From(table).
		Where(sq.Eq{"message_id": messageID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = storage.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.MapError(err, "post", messageID)
	}
	return true, nil
}

// GetByMessageID returns the entry registered for messageID.
// Returns domain.ErrNotFound if there is none.
func (r *Repo) GetByMessageID(ctx context.Context, messageID int64) (*domain.Entry, error) {
	query, args, err := r.db.Builder().
		Select(entryColumns...).
		From(table).
		Where(sq.Eq{"message_id": messageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	e, err := scanEntry(storage.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, storage.MapError(err, "post", messageID)
	}
	return e, nil
}

// Random returns one entry of category c chosen uniformly at random.
// Returns domain.ErrNotFound if the category holds no entries.
func (r *Repo) Random(ctx context.Context, c domain.Category) (*domain.Entry, error) {
	query, args, err := r.db.Builder().
		Select(entryColumns...).
		From(table).
		Where(sq.Eq{"category": string(c)}).
		OrderBy("RANDOM()").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build random: %w", err)
	}

	e, err := scanEntry(storage.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", c, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("random post in %s: %w", c, err)
	}
	return e, nil
}

// CountByCategory returns the number of entries per stored category.
// Categories without entries are absent from the map.
func (r *Repo) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	query, args, err := r.db.Builder().
		Select("COALESCE(category, '')", "COUNT(*)").
		From(table).
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := storage.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Category(category)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanEntry(row *sql.Row) (*domain.Entry, error) {
	var (
		e        domain.Entry
		category string
	)
	if err := row.Scan(&e.ID, &e.MessageID, &e.Hashtags, &e.Title, &category); err != nil {
		return nil, err
	}
	e.Category = domain.Category(category)
	return &e, nil
}
