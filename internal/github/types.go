package github

// ProjectInfo identifies a project board by owner and number
type ProjectInfo struct {
	OwnerType     OwnerType
	OwnerLogin    string
	ProjectNumber int
}

// OwnerType represents the type of project owner (user or organization)
type OwnerType int

const (
	// OwnerTypeUser represents a user-owned project
	OwnerTypeUser OwnerType = iota
	// OwnerTypeOrg represents an organization-owned project
	OwnerTypeOrg
)

func (t OwnerType) String() string {
	switch t {
	case OwnerTypeUser:
		return "user"
	case OwnerTypeOrg:
		return "organization"
	default:
		return "unknown"
	}
}

// Content type names as reported by __typename
const (
	TypeIssue       = "Issue"
	TypePullRequest = "PullRequest"
	TypeDraftIssue  = "DraftIssue"
)

// Field value type names as reported by __typename
const (
	TypeTextValue         = "ProjectV2ItemFieldTextValue"
	TypeNumberValue       = "ProjectV2ItemFieldNumberValue"
	TypeDateValue         = "ProjectV2ItemFieldDateValue"
	TypeSingleSelectValue = "ProjectV2ItemFieldSingleSelectValue"
	TypeIterationValue    = "ProjectV2ItemFieldIterationValue"
)

// ProjectItem is one row of a project board as returned by the API
type ProjectItem struct {
	ID          string
	Content     *ItemContent
	FieldValues []ItemFieldValue
}

// ItemContent holds the issue or pull request wrapped by a project item.
// Draft issues and redacted items carry only TypeName.
type ItemContent struct {
	TypeName   string
	ID         string
	Title      string
	Number     int
	State      string
	Body       string
	URL        string
	Parent     *ParentIssue
	Labels     []string
	Assignees  []string
	Milestone  string
	Repository string
	CreatedAt  string
	UpdatedAt  string
	ClosedAt   string
	// MergedAt is non-nil for pull requests, pointing at "" when unmerged.
	MergedAt *string
}

// ParentIssue is the parent reference of a sub-issue
type ParentIssue struct {
	ID     string
	Title  string
	Number int
}

// ItemFieldValue is a single custom field value attached to an item
type ItemFieldValue struct {
	TypeName string
	// FieldName is empty when the value has no owning field
	FieldName string
	Text      *string
	Number    *float64
	Date      *string
	Name      *string // single-select option label
	Title     *string // iteration title
}

// ProjectView describes a saved view of a project
type ProjectView struct {
	ID     string
	Name   string
	Number int
	Layout string
	Fields []string
}
