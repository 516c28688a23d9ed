// Package projecturl parses GitHub project board URLs.
package projecturl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/naag/gh-project-export/internal/github"
)

// ProjectInfo contains the parsed information from a GitHub project URL
type ProjectInfo = github.ProjectInfo

// Parse takes a GitHub project URL and returns the parsed ProjectInfo.
// Trailing view segments (/views/<n>) are accepted and reported separately
// by ParseView.
func Parse(projectURL string) (*ProjectInfo, error) {
	info, _, err := ParseView(projectURL)
	return info, err
}

// ParseView is like Parse but also returns the view number when the URL
// points at a specific view, or 0.
func ParseView(projectURL string) (*ProjectInfo, int, error) {
	u, err := url.Parse(projectURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid URL: %w", err)
	}

	if u.Host != "github.com" {
		return nil, 0, fmt.Errorf("not a GitHub URL")
	}

	// Split path into components
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 && len(parts) != 6 {
		return nil, 0, fmt.Errorf("invalid URL format: expected /<orgs|users>/<login>/projects/<number>")
	}

	// Check if it's an org or user project
	var ownerType github.OwnerType
	switch parts[0] {
	case "orgs":
		ownerType = github.OwnerTypeOrg
	case "users":
		ownerType = github.OwnerTypeUser
	default:
		return nil, 0, fmt.Errorf("invalid owner type in URL: %s", parts[0])
	}

	if parts[2] != "projects" {
		return nil, 0, fmt.Errorf("invalid URL format: expected 'projects' as third component")
	}

	projectNum, err := strconv.Atoi(parts[3])
	if err != nil {
		return nil, 0, fmt.Errorf("invalid project number: %w", err)
	}

	var viewNum int
	if len(parts) == 6 {
		if parts[4] != "views" {
			return nil, 0, fmt.Errorf("invalid URL format: expected 'views' as fifth component")
		}
		if viewNum, err = strconv.Atoi(parts[5]); err != nil {
			return nil, 0, fmt.Errorf("invalid view number: %w", err)
		}
	}

	return &ProjectInfo{
		OwnerType:     ownerType,
		OwnerLogin:    parts[1],
		ProjectNumber: projectNum,
	}, viewNum, nil
}
