package export

import (
	"strings"
	"time"
)

const (
	// StatusField is the custom field consulted before the item state
	StatusField = "Status"
	// ReleaseDateField holds the anticipated release date (YYYY-MM-DD)
	ReleaseDateField = "Anticipated release date"

	dateLayout = "2006-01-02"
)

// DefaultExcludedAssignees are the logins whose sub-issues are never exported
var DefaultExcludedAssignees = []string{"halligater", "smannan9"}

// DefaultAllowedStatuses are the statuses an exported item may have
var DefaultAllowedStatuses = []string{"in development", "completed", "open", "closed"}

// Filter decides which items are exported
type Filter struct {
	ExcludedAssignees []string
	AllowedStatuses   []string
	// Today is the reference date for the release window
	Today time.Time
	// LookAhead and LookBack bound the release window around Today
	LookAhead time.Duration
	LookBack  time.Duration
}

// NewFilter returns the standard filter relative to today
func NewFilter(today time.Time, excludedAssignees []string) *Filter {
	if excludedAssignees == nil {
		excludedAssignees = DefaultExcludedAssignees
	}
	return &Filter{
		ExcludedAssignees: excludedAssignees,
		AllowedStatuses:   DefaultAllowedStatuses,
		Today:             today,
		LookAhead:         60 * 24 * time.Hour,
		LookBack:          14 * 24 * time.Hour,
	}
}

// Apply returns the eligible items in their original order
func (f *Filter) Apply(items []Item) []Item {
	var eligible []Item
	for i := range items {
		if f.Eligible(&items[i]) {
			eligible = append(eligible, items[i])
		}
	}
	return eligible
}

// Eligible reports whether a single item passes every gate
func (f *Filter) Eligible(item *Item) bool {
	// Only sub-issues are exported; their parents are summary containers.
	if !item.HasParent() {
		return false
	}
	if f.hasExcludedAssignee(item) {
		return false
	}
	if !f.statusAllowed(item) {
		return false
	}
	return f.releaseDateInWindow(item)
}

func (f *Filter) hasExcludedAssignee(item *Item) bool {
	for _, assignee := range item.Assignees {
		for _, excluded := range f.ExcludedAssignees {
			if strings.EqualFold(assignee, excluded) {
				return true
			}
		}
	}
	return false
}

// Status returns the Status custom field when set, else the item state
func Status(item *Item) string {
	if v, ok := item.CustomField(StatusField); ok {
		return v.String()
	}
	return item.State
}

// statusAllowed lets an empty status through.
func (f *Filter) statusAllowed(item *Item) bool {
	status := Status(item)
	if status == "" {
		return true
	}
	for _, allowed := range f.AllowedStatuses {
		if strings.EqualFold(status, allowed) {
			return true
		}
	}
	return false
}

// ReleaseDate parses the anticipated release date. Missing, non-text and
// malformed values all report false.
func ReleaseDate(item *Item) (time.Time, bool) {
	v, ok := item.CustomField(ReleaseDateField)
	if !ok || v.IsNumber() || v.String() == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, v.String())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// releaseDateInWindow keeps the three conditions as an OR: no date, on or
// before the look-ahead bound, or on or after the look-back bound.
func (f *Filter) releaseDateInWindow(item *Item) bool {
	date, ok := ReleaseDate(item)
	if !ok {
		return true
	}

	today := truncateDay(f.Today)
	if !date.After(today.Add(f.LookAhead)) {
		return true
	}
	if !date.Before(today.Add(-f.LookBack)) {
		return true
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
