package catalogue

import "github.com/heartmarshall/recobot/internal/domain"

// RegisterResult is the outcome of a successful registration.
// Created is false when the post was already in the catalogue; Entry then
// holds the originally stored fields.
type RegisterResult struct {
	Created bool
	Entry   domain.Entry
}

// IngestResult is the outcome of automatic ingestion of a channel post.
// Skipped posts carry no recognizable category or title and are not stored.
type IngestResult struct {
	Skipped bool
	Created bool
	Entry   domain.Entry
}

// Recommendation is the outcome of a selection. Found is false when the
// category holds no entries.
type Recommendation struct {
	Category domain.Category
	Found    bool
	Entry    domain.Entry
}
