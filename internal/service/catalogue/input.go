package catalogue

import (
	"strconv"
	"strings"

	"github.com/heartmarshall/recobot/internal/domain"
)

// RegisterInput holds a manually registered post, as typed by an admin.
type RegisterInput struct {
	MessageID string
	Tag       string
	Title     string
	Source    string
}

// ParseRegisterArgs splits "/add" command arguments of the form
// "ID #tag Title words..." into a RegisterInput.
func ParseRegisterArgs(args, source string) RegisterInput {
	fields := strings.Fields(args)
	in := RegisterInput{Source: source}
	if len(fields) > 0 {
		in.MessageID = fields[0]
	}
	if len(fields) > 1 {
		in.Tag = fields[1]
	}
	if len(fields) > 2 {
		in.Title = strings.Join(fields[2:], " ")
	}
	return in
}

// toEntry validates the input and builds the entry to store.
// Checks run in order: required fields, message id, category tag.
func (i RegisterInput) toEntry() (domain.Entry, error) {
	var missing []domain.FieldError
	if strings.TrimSpace(i.MessageID) == "" {
		missing = append(missing, domain.FieldError{Field: "message_id", Message: "required"})
	}
	if strings.TrimSpace(i.Tag) == "" {
		missing = append(missing, domain.FieldError{Field: "tag", Message: "required"})
	}
	title := domain.NormalizeText(i.Title)
	if title == "" {
		missing = append(missing, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(missing) > 0 {
		return domain.Entry{}, domain.NewValidationErrors(domain.ReasonMissingFields, missing)
	}

	id, err := parseMessageID(i.MessageID)
	if err != nil {
		return domain.Entry{}, err
	}

	category, ok := domain.CategoryFromTag(i.Tag)
	if !ok {
		return domain.Entry{}, domain.NewValidationError(domain.ReasonBadCategory, "tag", "use one of: "+domain.TagList())
	}

	return domain.Entry{
		MessageID: id,
		Hashtags:  strings.ToLower(strings.TrimSpace(i.Tag)),
		Title:     title,
		Category:  category,
	}, nil
}

func parseMessageID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(domain.ReasonBadID, "message_id", "must be a positive number")
	}
	return id, nil
}

// ParseCategory validates a category name supplied by a client.
func ParseCategory(raw string) (domain.Category, error) {
	c := domain.Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", domain.NewValidationError(domain.ReasonBadCategory, "category", "use one of: "+domain.TagList())
	}
	return c, nil
}
