package github

import (
	"context"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	GetProjectIDFunc    func(ctx context.Context, project ProjectInfo) (string, error)
	GetProjectViewFunc  func(ctx context.Context, projectID string, viewNumber int) (*ProjectView, error)
	GetProjectItemsFunc func(ctx context.Context, projectID string) ([]ProjectItem, error)
}

// GetProjectID implements the Client interface
func (c *MockClient) GetProjectID(ctx context.Context, project ProjectInfo) (string, error) {
	if c.GetProjectIDFunc != nil {
		return c.GetProjectIDFunc(ctx, project)
	}
	return "", nil
}

// GetProjectView implements the Client interface
func (c *MockClient) GetProjectView(ctx context.Context, projectID string, viewNumber int) (*ProjectView, error) {
	if c.GetProjectViewFunc != nil {
		return c.GetProjectViewFunc(ctx, projectID, viewNumber)
	}
	return nil, ErrViewNotFound
}

// GetProjectItems implements the Client interface
func (c *MockClient) GetProjectItems(ctx context.Context, projectID string) ([]ProjectItem, error) {
	if c.GetProjectItemsFunc != nil {
		return c.GetProjectItemsFunc(ctx, projectID)
	}
	return nil, nil
}
