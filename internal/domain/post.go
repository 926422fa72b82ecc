package domain

import "strings"

// ParsedPost is what ParsePost extracts from a channel post.
type ParsedPost struct {
	Category Category
	Title    string
	TagLine  string
}

// ParsePost extracts a catalogue entry from free-form post text.
//
// The first line starting with a recognized tag gives the category; that line
// is kept whole as TagLine. The first non-empty line that does not start with
// '#' is the title. Posts missing either are reported with ok=false.
func ParsePost(raw string) (ParsedPost, bool) {
	var p ParsedPost
	var haveCategory bool

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if !haveCategory {
				if c, ok := CategoryFromLine(line); ok {
					p.Category = c
					p.TagLine = line
					haveCategory = true
				}
			}
			continue
		}

		if p.Title == "" {
			p.Title = NormalizeText(line)
		}
	}

	if !haveCategory || p.Title == "" {
		return ParsedPost{}, false
	}
	return p, true
}
