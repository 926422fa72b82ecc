package domain

import (
	"strings"
)

// CallbackPrefix is the payload prefix of the category selection buttons.
const CallbackPrefix = "category_"

// NormalizeText prepares display text for storage:
//   - trims leading/trailing whitespace
//   - compresses runs of spaces and tabs into one space
//
// Case is preserved; titles are shown back to users verbatim.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CategoryFromTag maps a hashtag to its category using an exact,
// case-insensitive match against the recognized tags.
func CategoryFromTag(tag string) (Category, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, c := range Categories {
		if tag == c.Tag() {
			return c, true
		}
	}
	return "", false
}

// CategoryFromLine reports the category whose tag starts line,
// ignoring surrounding whitespace and case.
func CategoryFromLine(line string) (Category, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	for _, c := range Categories {
		if strings.HasPrefix(line, c.Tag()) {
			return c, true
		}
	}
	return "", false
}

// CategoryFromCallback extracts the category from a button payload such as
// "category_книги". Unknown payloads return false.
func CategoryFromCallback(data string) (Category, bool) {
	name, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return "", false
	}
	c := Category(name)
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// CallbackData is the inverse of CategoryFromCallback.
func CallbackData(c Category) string {
	return CallbackPrefix + string(c)
}

// TagList renders the recognized tags for user-facing hints.
func TagList() string {
	tags := make([]string, len(Categories))
	for i, c := range Categories {
		tags[i] = c.Tag()
	}
	return strings.Join(tags, ", ")
}
