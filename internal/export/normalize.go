package export

import (
	"log/slog"
	"strconv"

	"github.com/naag/gh-project-export/internal/github"
)

// Normalize converts a raw project item into an Item. The content kind is
// decided here and nowhere else.
func Normalize(raw github.ProjectItem) Item {
	item := Item{
		ID:           raw.ID,
		ContentType:  classify(raw.Content),
		CustomFields: make(map[string]Value),
	}

	if item.ContentType != ContentUnknown {
		c := raw.Content
		item.Title = c.Title
		item.Number = strconv.Itoa(c.Number)
		item.State = c.State
		item.Body = c.Body
		item.URL = c.URL
		item.Labels = append([]string(nil), c.Labels...)
		item.Assignees = append([]string(nil), c.Assignees...)
		item.Milestone = c.Milestone
		item.CreatedAt = c.CreatedAt
		item.UpdatedAt = c.UpdatedAt
		item.ClosedAt = c.ClosedAt
		item.Repository = c.Repository

		if c.Parent != nil {
			item.ParentIssue = &ParentIssue{
				ID:     c.Parent.ID,
				Title:  c.Parent.Title,
				Number: c.Parent.Number,
			}
		}
		if item.ContentType == ContentPullRequest {
			item.MergedAt = *c.MergedAt
		}
	}

	for _, fv := range raw.FieldValues {
		if fv.FieldName == "" {
			slog.Debug("skipping field value without field",
				"item", raw.ID,
				"type", fv.TypeName,
			)
			continue
		}

		if v, ok := fieldValue(fv); ok {
			item.CustomFields[fv.FieldName] = v
		}
	}

	return item
}

// NormalizeAll normalizes items preserving order
func NormalizeAll(raw []github.ProjectItem) []Item {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r))
	}
	return items
}

// classify only recognises content exposing a number and a state, i.e.
// issues and pull requests. The mergedAt attribute marks a pull request.
func classify(c *github.ItemContent) ContentType {
	if c == nil {
		return ContentUnknown
	}

	switch c.TypeName {
	case github.TypeIssue, github.TypePullRequest:
		if c.MergedAt != nil {
			return ContentPullRequest
		}
		return ContentIssue
	default:
		return ContentUnknown
	}
}

// fieldValue picks text, then number, then date, then single-select label,
// then iteration title.
func fieldValue(fv github.ItemFieldValue) (Value, bool) {
	switch {
	case fv.Text != nil:
		return TextValue(*fv.Text), true
	case fv.Number != nil:
		return NumberValue(*fv.Number), true
	case fv.Date != nil:
		return TextValue(*fv.Date), true
	case fv.Name != nil:
		return TextValue(*fv.Name), true
	case fv.Title != nil:
		return TextValue(*fv.Title), true
	default:
		return Value{}, false
	}
}
