package domain

// Entry is one recommendable item tied to a channel post.
// Entries are append-only: once stored they are never updated.
type Entry struct {
	ID        int64
	MessageID int64
	Hashtags  string
	Title     string
	Category  Category
}

// CatalogueStats is the per-category breakdown of stored entries.
type CatalogueStats struct {
	Total      int
	ByCategory map[Category]int
}

// Empty reports whether the catalogue holds no entries at all.
func (s CatalogueStats) Empty() bool {
	return s.Total == 0
}

// Count returns the number of entries in c (zero when absent).
func (s CatalogueStats) Count(c Category) int {
	return s.ByCategory[c]
}
