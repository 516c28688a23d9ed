package github

import (
	"context"
	"errors"
)

var (
	// ErrProjectNotFound is returned when the owner has no project with the given number
	ErrProjectNotFound = errors.New("project not found")

	// ErrViewNotFound is returned when a project has no views
	ErrViewNotFound = errors.New("project view not found")
)

// Client defines the interface for reading project boards from GitHub
type Client interface {
	// GetProjectID retrieves the globally unique node ID for a project
	GetProjectID(ctx context.Context, project ProjectInfo) (string, error)

	// GetProjectView retrieves the configuration of a project view
	GetProjectView(ctx context.Context, projectID string, viewNumber int) (*ProjectView, error)

	// GetProjectItems retrieves every item of a project, following pagination
	GetProjectItems(ctx context.Context, projectID string) ([]ProjectItem, error)
}
