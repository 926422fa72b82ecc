package catalogue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/heartmarshall/recobot/internal/adapter/storage"
	"github.com/heartmarshall/recobot/internal/adapter/storage/catalogue"
	"github.com/heartmarshall/recobot/internal/adapter/storage/testhelper"
	"github.com/heartmarshall/recobot/internal/domain"
)

// eachBackend runs fn against SQLite and, unless skipped, PostgreSQL.
func eachBackend(t *testing.T, fn func(t *testing.T, repo *catalogue.Repo, db *storage.DB)) {
	t.Helper()
	backends := []struct {
		name  string
		setup func(t *testing.T) *storage.DB
	}{
		{"sqlite", testhelper.SetupSQLite},
		{"postgres", testhelper.SetupPostgres},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			db := b.setup(t)
			fn(t, catalogue.New(db), db)
		})
	}
}

func buildEntry(messageID int64, c domain.Category, title string) *domain.Entry {
	return &domain.Entry{
		MessageID: messageID,
		Hashtags:  c.Tag(),
		Title:     title,
		Category:  c,
	}
}

// ---------------------------------------------------------------------------
// InsertIfAbsent tests
// ---------------------------------------------------------------------------

func TestRepo_InsertIfAbsent_HappyPath(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()
		e := buildEntry(123, domain.CategoryBooks, "Между нами горы")

		created, err := repo.InsertIfAbsent(ctx, e)
		if err != nil {
			t.Fatalf("InsertIfAbsent: unexpected error: %v", err)
		}
		if !created {
			t.Fatal("expected row to be created")
		}
		if e.ID == 0 {
			t.Error("ID should be assigned")
		}

		got, err := repo.GetByMessageID(ctx, 123)
		if err != nil {
			t.Fatalf("GetByMessageID: %v", err)
		}
		if got.Title != "Между нами горы" || got.Category != domain.CategoryBooks || got.Hashtags != "#книги" {
			t.Errorf("stored entry mismatch: %+v", got)
		}
		if got.ID != e.ID {
			t.Errorf("ID mismatch: got %d, want %d", got.ID, e.ID)
		}
	})
}

func TestRepo_InsertIfAbsent_DuplicateIsNoop(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()

		if _, err := repo.InsertIfAbsent(ctx, buildEntry(7, domain.CategoryMovies, "First")); err != nil {
			t.Fatalf("first insert: %v", err)
		}

		created, err := repo.InsertIfAbsent(ctx, buildEntry(7, domain.CategorySeries, "Second"))
		if err != nil {
			t.Fatalf("second insert: unexpected error: %v", err)
		}
		if created {
			t.Fatal("duplicate insert must not create a row")
		}

		got, err := repo.GetByMessageID(ctx, 7)
		if err != nil {
			t.Fatalf("GetByMessageID: %v", err)
		}
		if got.Title != "First" || got.Category != domain.CategoryMovies {
			t.Errorf("duplicate changed stored entry: %+v", got)
		}

		counts, err := repo.CountByCategory(ctx)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		if counts[domain.CategoryMovies] != 1 || counts[domain.CategorySeries] != 0 {
			t.Errorf("counts = %v, want one movie", counts)
		}
	})
}

func TestRepo_InsertIfAbsent_ConcurrentDuplicates(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()
		const writers = 8

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.InsertIfAbsent(ctx, buildEntry(99, domain.CategoryBooks, fmt.Sprintf("writer %d", i)))
				if err != nil {
					t.Errorf("writer %d: %v", i, err)
					return
				}
				if ok {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if created != 1 {
			t.Errorf("created = %d, want exactly 1", created)
		}
		counts, err := repo.CountByCategory(ctx)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		if counts[domain.CategoryBooks] != 1 {
			t.Errorf("books = %d, want 1", counts[domain.CategoryBooks])
		}
	})
}

// ---------------------------------------------------------------------------
// Exists / GetByMessageID tests
// ---------------------------------------------------------------------------

func TestRepo_Exists(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()

		ok, err := repo.Exists(ctx, 5)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if ok {
			t.Fatal("empty store should not contain 5")
		}

		if _, err := repo.InsertIfAbsent(ctx, buildEntry(5, domain.CategorySeries, "Тьма")); err != nil {
			t.Fatalf("insert: %v", err)
		}

		ok, err = repo.Exists(ctx, 5)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if !ok {
			t.Error("expected 5 to exist")
		}
	})
}

func TestRepo_GetByMessageID_NotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		_, err := repo.GetByMessageID(context.Background(), 404)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Random tests
// ---------------------------------------------------------------------------

func TestRepo_Random_EmptyCategory(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()
		if _, err := repo.InsertIfAbsent(ctx, buildEntry(1, domain.CategoryBooks, "Книга")); err != nil {
			t.Fatalf("insert: %v", err)
		}

		_, err := repo.Random(ctx, domain.CategoryMovies)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for empty category, got %v", err)
		}
	})
}

func TestRepo_Random_MembershipAndCoverage(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()

		movies := map[int64]bool{10: true, 11: true, 12: true, 13: true}
		for id := range movies {
			if _, err := repo.InsertIfAbsent(ctx, buildEntry(id, domain.CategoryMovies, fmt.Sprintf("Фильм %d", id))); err != nil {
				t.Fatalf("insert movie: %v", err)
			}
		}
		for id := int64(20); id < 25; id++ {
			if _, err := repo.InsertIfAbsent(ctx, buildEntry(id, domain.CategoryBooks, "Книга")); err != nil {
				t.Fatalf("insert book: %v", err)
			}
		}

		const trials = 400
		seen := make(map[int64]int)
		for range trials {
			e, err := repo.Random(ctx, domain.CategoryMovies)
			if err != nil {
				t.Fatalf("Random: %v", err)
			}
			if e.Category != domain.CategoryMovies || !movies[e.MessageID] {
				t.Fatalf("Random returned entry outside category: %+v", e)
			}
			seen[e.MessageID]++
		}

		// Expected 100 each; a uniform draw falls below 40 with negligible probability.
		for id := range movies {
			if seen[id] < 40 {
				t.Errorf("message %d selected %d/%d times, distribution looks skewed: %v", id, seen[id], trials, seen)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// CountByCategory tests
// ---------------------------------------------------------------------------

func TestRepo_CountByCategory(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, _ *storage.DB) {
		ctx := context.Background()

		counts, err := repo.CountByCategory(ctx)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		if len(counts) != 0 {
			t.Fatalf("empty store counts = %v", counts)
		}

		seed := []*domain.Entry{
			buildEntry(1, domain.CategoryBooks, "a"),
			buildEntry(2, domain.CategoryBooks, "b"),
			buildEntry(3, domain.CategoryMovies, "c"),
			buildEntry(3, domain.CategoryMovies, "c duplicate"),
			buildEntry(4, domain.CategorySeries, "d"),
		}
		for _, e := range seed {
			if _, err := repo.InsertIfAbsent(ctx, e); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}

		counts, err = repo.CountByCategory(ctx)
		if err != nil {
			t.Fatalf("CountByCategory: %v", err)
		}
		want := map[domain.Category]int{domain.CategoryBooks: 2, domain.CategoryMovies: 1, domain.CategorySeries: 1}
		for c, n := range want {
			if counts[c] != n {
				t.Errorf("count[%s] = %d, want %d", c, counts[c], n)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

func TestRepo_TxRollback(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, db *storage.DB) {
		ctx := context.Background()
		tx := storage.NewTxManager(db)
		sentinel := errors.New("abort")

		err := tx.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := repo.InsertIfAbsent(ctx, buildEntry(77, domain.CategoryBooks, "rolled back")); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("RunInTx error = %v, want sentinel", err)
		}

		ok, err := repo.Exists(ctx, 77)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if ok {
			t.Error("rolled back insert is visible")
		}
	})
}

func TestRepo_TxCommit(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo *catalogue.Repo, db *storage.DB) {
		ctx := context.Background()
		tx := storage.NewTxManager(db)

		err := tx.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := repo.InsertIfAbsent(ctx, buildEntry(78, domain.CategoryBooks, "kept")); err != nil {
				return err
			}
			_, err := repo.GetByMessageID(ctx, 78)
			return err
		})
		if err != nil {
			t.Fatalf("RunInTx: %v", err)
		}

		got, err := repo.GetByMessageID(ctx, 78)
		if err != nil {
			t.Fatalf("GetByMessageID: %v", err)
		}
		if got.Title != "kept" {
			t.Errorf("title = %q, want kept", got.Title)
		}
	})
}
