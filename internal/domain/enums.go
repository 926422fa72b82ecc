package domain

// Category is the closed set of catalogue sections. Values are the channel's
// own hashtag words, so a stored category reads the same as the tag it came from.
type Category string

const (
	CategoryMovies Category = "фильмы"
	CategorySeries Category = "сериалы"
	CategoryBooks  Category = "книги"
)

// Categories lists every category in the order they are offered to users.
var Categories = []Category{CategoryMovies, CategorySeries, CategoryBooks}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryMovies, CategorySeries, CategoryBooks:
		return true
	}
	return false
}

// Tag returns the hashtag that marks a channel post as belonging to c.
func (c Category) Tag() string { return "#" + string(c) }

// ValidationReason is the machine-readable cause of a rejected registration.
type ValidationReason string

const (
	ReasonMissingFields ValidationReason = "missing_fields"
	ReasonBadID         ValidationReason = "bad_id"
	ReasonBadCategory   ValidationReason = "bad_category"
)

func (r ValidationReason) String() string { return string(r) }
