package export

import (
	"strconv"
)

// ContentType is the kind of content a project item wraps
type ContentType int

const (
	// ContentUnknown covers items without issue or pull request content
	ContentUnknown ContentType = iota
	// ContentIssue is an issue
	ContentIssue
	// ContentPullRequest is a pull request
	ContentPullRequest
)

func (t ContentType) String() string {
	switch t {
	case ContentIssue:
		return "Issue"
	case ContentPullRequest:
		return "PullRequest"
	default:
		return "Unknown"
	}
}

// ParentIssue references the parent of a sub-issue
type ParentIssue struct {
	ID     string
	Title  string
	Number int
}

// Value is a custom field value, either text or a number
type Value struct {
	text     string
	number   float64
	isNumber bool
}

// TextValue returns a text Value
func TextValue(s string) Value {
	return Value{text: s}
}

// NumberValue returns a numeric Value
func NumberValue(n float64) Value {
	return Value{number: n, isNumber: true}
}

// IsNumber reports whether v holds a number
func (v Value) IsNumber() bool {
	return v.isNumber
}

// Number returns the numeric value, zero for text values
func (v Value) Number() float64 {
	return v.number
}

func (v Value) String() string {
	if v.isNumber {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

// Item is a project item normalized for filtering and export.
// It is built once per raw item and not modified afterwards.
type Item struct {
	ID          string
	ContentType ContentType
	Title       string
	Number      string
	State       string
	Body        string
	URL         string
	ParentIssue *ParentIssue
	Labels      []string
	Assignees   []string
	Milestone   string
	CreatedAt   string
	UpdatedAt   string
	ClosedAt    string
	MergedAt    string
	Repository  string

	CustomFields map[string]Value
}

// HasParent reports whether the item is a sub-issue
func (i *Item) HasParent() bool {
	return i.ParentIssue != nil
}

// CustomField returns the named custom field value
func (i *Item) CustomField(name string) (Value, bool) {
	v, ok := i.CustomFields[name]
	return v, ok
}

// attribute looks up a direct item attribute by its export name. Attributes
// derived from content are only present when the item has content.
func (i *Item) attribute(name string) (cell string, ok bool) {
	switch name {
	case "id":
		return i.ID, true
	case "content_type":
		return i.ContentType.String(), true
	}

	if i.ContentType == ContentUnknown {
		return "", false
	}

	switch name {
	case "title":
		return i.Title, true
	case "number":
		return i.Number, true
	case "state":
		return i.State, true
	case "body":
		return i.Body, true
	case "html_url":
		return i.URL, true
	case "labels":
		return joinList(i.Labels), true
	case "assignees":
		return joinList(i.Assignees), true
	case "milestone":
		return i.Milestone, true
	case "created_at":
		return i.CreatedAt, true
	case "updated_at":
		return i.UpdatedAt, true
	case "closed_at":
		return i.ClosedAt, true
	case "repository":
		return i.Repository, true
	case "merged_at":
		return i.MergedAt, i.ContentType == ContentPullRequest
	case "parent_issue":
		if i.ParentIssue == nil {
			return "", true
		}
		return i.ParentIssue.Title, true
	case "parent_issue_number":
		if i.ParentIssue == nil {
			return "", true
		}
		return strconv.Itoa(i.ParentIssue.Number), true
	case "parent_issue_id":
		if i.ParentIssue == nil {
			return "", true
		}
		return i.ParentIssue.ID, true
	}

	return "", false
}
