package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// itemsPageSize is the number of project items requested per page
	itemsPageSize = 100

	// DefaultPageRate paces item page requests (pages per second)
	DefaultPageRate = rate.Limit(2)
)

// Options configures a GraphQLClient
type Options struct {
	// Token is the GitHub token used for authentication
	Token string
	// Endpoint overrides the GraphQL endpoint (GitHub Enterprise or tests)
	Endpoint string
	// Debug logs HTTP requests and responses
	Debug bool
	// PageRate limits item page requests, DefaultPageRate when zero
	PageRate rate.Limit
}

// GraphQLClient implements the Client interface using GitHub's GraphQL API
type GraphQLClient struct {
	client  *githubv4.Client
	limiter *rate.Limiter
}

// NewGraphQLClient creates a new GitHub GraphQL client
func NewGraphQLClient(opts Options) (*GraphQLClient, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("GitHub token not set")
	}

	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: opts.Token},
	)
	httpClient := oauth2.NewClient(context.Background(), src)

	if opts.Debug {
		httpClient.Transport = &debugTransport{
			transport: httpClient.Transport,
		}
	}

	return newGraphQLClient(httpClient, opts), nil
}

func newGraphQLClient(httpClient *http.Client, opts Options) *GraphQLClient {
	var client *githubv4.Client
	if opts.Endpoint != "" {
		client = githubv4.NewEnterpriseClient(opts.Endpoint, httpClient)
	} else {
		client = githubv4.NewClient(httpClient)
	}

	limit := opts.PageRate
	if limit == 0 {
		limit = DefaultPageRate
	}

	return &GraphQLClient{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GraphQL query types for GitHub's API
type (
	// fieldRef resolves the name of the field owning a value or listed in a view
	fieldRef struct {
		Common struct {
			Name string
		} `graphql:"... on ProjectV2FieldCommon"`
	}

	// projectItemNode represents an item in a GitHub project
	projectItemNode struct {
		ID      string
		Content *struct {
			TypeName    string             `graphql:"__typename"`
			Issue       issueContent       `graphql:"... on Issue"`
			PullRequest pullRequestContent `graphql:"... on PullRequest"`
		}
		FieldValues struct {
			Nodes []fieldValueNode
		} `graphql:"fieldValues(first: 20)"`
	}

	// ContentCommon holds the attributes shared by issues and pull requests.
	// It is embedded so its fields are selected inline.
	ContentCommon struct {
		ID        string
		Title     string
		Number    int
		State     string
		Body      string
		URL       string
		CreatedAt githubv4.DateTime
		UpdatedAt githubv4.DateTime
		ClosedAt  *githubv4.DateTime
		Labels    struct {
			Nodes []struct {
				Name string
			}
		} `graphql:"labels(first: 10)"`
		Assignees struct {
			Nodes []struct {
				Login string
			}
		} `graphql:"assignees(first: 10)"`
		Milestone *struct {
			Title string
		}
		Repository struct {
			Name string
		}
	}

	issueContent struct {
		ContentCommon
		Parent *struct {
			ID     string
			Title  string
			Number int
		}
	}

	pullRequestContent struct {
		ContentCommon
		MergedAt *githubv4.DateTime
	}

	// fieldValueNode represents one custom field value of an item
	fieldValueNode struct {
		TypeName  string `graphql:"__typename"`
		TextValue struct {
			Text  *string
			Field fieldRef
		} `graphql:"... on ProjectV2ItemFieldTextValue"`
		NumberValue struct {
			Number *float64
			Field  fieldRef
		} `graphql:"... on ProjectV2ItemFieldNumberValue"`
		DateValue struct {
			Date  *string
			Field fieldRef
		} `graphql:"... on ProjectV2ItemFieldDateValue"`
		SingleSelectValue struct {
			Name  *string
			Field fieldRef
		} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
		IterationValue struct {
			Title *string
			Field fieldRef
		} `graphql:"... on ProjectV2ItemFieldIterationValue"`
	}
)

// GetProjectID implements the Client interface
func (c *GraphQLClient) GetProjectID(ctx context.Context, project ProjectInfo) (string, error) {
	var id string

	switch project.OwnerType {
	case OwnerTypeOrg:
		var query struct {
			Organization struct {
				ProjectV2 struct {
					ID string
				} `graphql:"projectV2(number: $projectNumber)"`
			} `graphql:"organization(login: $login)"`
		}
		if err := c.query(ctx, &query, project); err != nil {
			return "", fmt.Errorf("failed to query organization project: %w", err)
		}
		id = query.Organization.ProjectV2.ID
	case OwnerTypeUser:
		var query struct {
			User struct {
				ProjectV2 struct {
					ID string
				} `graphql:"projectV2(number: $projectNumber)"`
			} `graphql:"user(login: $login)"`
		}
		if err := c.query(ctx, &query, project); err != nil {
			return "", fmt.Errorf("failed to query user project: %w", err)
		}
		id = query.User.ProjectV2.ID
	default:
		return "", fmt.Errorf("invalid owner type")
	}

	if id == "" {
		return "", fmt.Errorf("%s %s project #%d: %w", project.OwnerType, project.OwnerLogin, project.ProjectNumber, ErrProjectNotFound)
	}
	return id, nil
}

func (c *GraphQLClient) query(ctx context.Context, q interface{}, project ProjectInfo) error {
	variables := map[string]interface{}{
		"login":         githubv4.String(project.OwnerLogin),
		"projectNumber": githubv4.Int(project.ProjectNumber),
	}

	if err := c.client.Query(ctx, q, variables); err != nil {
		slog.Error("project lookup failed",
			"owner", project.OwnerLogin,
			"project", project.ProjectNumber,
			"error", err,
		)
		return err
	}
	return nil
}

// GetProjectView implements the Client interface
func (c *GraphQLClient) GetProjectView(ctx context.Context, projectID string, viewNumber int) (*ProjectView, error) {
	var query struct {
		Node struct {
			ProjectV2 struct {
				Views struct {
					Nodes []struct {
						ID     string
						Name   string
						Number int
						Layout string
						Fields struct {
							Nodes []fieldRef
						} `graphql:"fields(first: 50)"`
					}
				} `graphql:"views(first: 20)"`
			} `graphql:"... on ProjectV2"`
		} `graphql:"node(id: $projectID)"`
	}

	variables := map[string]interface{}{
		"projectID": githubv4.ID(projectID),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		slog.Error("view lookup failed", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("failed to query project views: %w", err)
	}

	views := make([]ProjectView, 0, len(query.Node.ProjectV2.Views.Nodes))
	for _, v := range query.Node.ProjectV2.Views.Nodes {
		view := ProjectView{
			ID:     v.ID,
			Name:   v.Name,
			Number: v.Number,
			Layout: v.Layout,
		}
		for _, f := range v.Fields.Nodes {
			view.Fields = append(view.Fields, f.Common.Name)
		}
		views = append(views, view)
	}

	return selectView(views, viewNumber)
}

// selectView prefers the requested view number, then the first table
// layout, then whatever comes first.
func selectView(views []ProjectView, viewNumber int) (*ProjectView, error) {
	if len(views) == 0 {
		return nil, ErrViewNotFound
	}
	for i := range views {
		if views[i].Number == viewNumber {
			return &views[i], nil
		}
	}
	for i := range views {
		if views[i].Layout == "TABLE_LAYOUT" {
			return &views[i], nil
		}
	}
	return &views[0], nil
}

// itemsQuery fetches one page of project items
type itemsQuery struct {
	Node struct {
		ProjectV2 struct {
			Items struct {
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
				Nodes []projectItemNode
			} `graphql:"items(first: $first, after: $cursor)"`
		} `graphql:"... on ProjectV2"`
	} `graphql:"node(id: $projectID)"`
}

// GetProjectItems implements the Client interface
func (c *GraphQLClient) GetProjectItems(ctx context.Context, projectID string) ([]ProjectItem, error) {
	variables := map[string]interface{}{
		"projectID": githubv4.ID(projectID),
		"first":     githubv4.Int(itemsPageSize),
		"cursor":    (*githubv4.String)(nil),
	}

	var items []ProjectItem
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var query itemsQuery
		if err := c.client.Query(ctx, &query, variables); err != nil {
			slog.Error("failed to fetch project items",
				"project_id", projectID,
				"page", page,
				"error", err,
			)
			return nil, fmt.Errorf("failed to query project items (page %d): %w", page, err)
		}

		for _, node := range query.Node.ProjectV2.Items.Nodes {
			items = append(items, node.toProjectItem())
		}
		slog.Debug("fetched project items page", "page", page, "items", len(items))

		pageInfo := query.Node.ProjectV2.Items.PageInfo
		if !pageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(pageInfo.EndCursor)
	}

	return items, nil
}

func (n projectItemNode) toProjectItem() ProjectItem {
	item := ProjectItem{ID: n.ID}

	if n.Content != nil {
		switch n.Content.TypeName {
		case TypeIssue:
			content := n.Content.Issue.ContentCommon.toItemContent(TypeIssue)
			if p := n.Content.Issue.Parent; p != nil {
				content.Parent = &ParentIssue{ID: p.ID, Title: p.Title, Number: p.Number}
			}
			item.Content = content
		case TypePullRequest:
			content := n.Content.PullRequest.ContentCommon.toItemContent(TypePullRequest)
			mergedAt := formatDateTime(n.Content.PullRequest.MergedAt)
			content.MergedAt = &mergedAt
			item.Content = content
		default:
			item.Content = &ItemContent{TypeName: n.Content.TypeName}
		}
	}

	for _, v := range n.FieldValues.Nodes {
		if fv, ok := v.toItemFieldValue(); ok {
			item.FieldValues = append(item.FieldValues, fv)
		}
	}

	return item
}

func (c ContentCommon) toItemContent(typeName string) *ItemContent {
	content := &ItemContent{
		TypeName:   typeName,
		ID:         c.ID,
		Title:      c.Title,
		Number:     c.Number,
		State:      c.State,
		Body:       c.Body,
		URL:        c.URL,
		Repository: c.Repository.Name,
		CreatedAt:  formatDateTime(&c.CreatedAt),
		UpdatedAt:  formatDateTime(&c.UpdatedAt),
		ClosedAt:   formatDateTime(c.ClosedAt),
	}
	if c.Milestone != nil {
		content.Milestone = c.Milestone.Title
	}
	for _, l := range c.Labels.Nodes {
		content.Labels = append(content.Labels, l.Name)
	}
	for _, a := range c.Assignees.Nodes {
		content.Assignees = append(content.Assignees, a.Login)
	}
	return content
}

// toItemFieldValue reports false for value types that carry nothing usable
// (e.g. user, label or repository values).
func (v fieldValueNode) toItemFieldValue() (ItemFieldValue, bool) {
	fv := ItemFieldValue{TypeName: v.TypeName}

	switch v.TypeName {
	case TypeTextValue:
		fv.FieldName = v.TextValue.Field.Common.Name
		fv.Text = v.TextValue.Text
	case TypeNumberValue:
		fv.FieldName = v.NumberValue.Field.Common.Name
		fv.Number = v.NumberValue.Number
	case TypeDateValue:
		fv.FieldName = v.DateValue.Field.Common.Name
		fv.Date = v.DateValue.Date
	case TypeSingleSelectValue:
		fv.FieldName = v.SingleSelectValue.Field.Common.Name
		fv.Name = v.SingleSelectValue.Name
	case TypeIterationValue:
		fv.FieldName = v.IterationValue.Field.Common.Name
		fv.Title = v.IterationValue.Title
	default:
		return fv, false
	}

	return fv, true
}

func formatDateTime(t *githubv4.DateTime) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
