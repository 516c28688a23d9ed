// Package export turns project board items into spreadsheet rows.
//
// Items are normalized, filtered down to the sub-issues that qualify for
// export and projected into a fixed set of columns before being handed to a
// Sink.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naag/gh-project-export/internal/github"
)

// ErrNoItems is returned when the project has no items to export
var ErrNoItems = errors.New("no items found in project")

// Sink receives the exported rows
type Sink interface {
	// EnsureTab creates the tab unless it already exists
	EnsureTab(ctx context.Context, name string) error
	// ReplaceTabContents clears the tab and writes rows from the first cell
	ReplaceTabContents(ctx context.Context, name string, rows [][]string) error
}

// Options configures an export run
type Options struct {
	Project      github.ProjectInfo
	ViewNumber   int
	CreateNewTab bool
	DryRun       bool
	// CSV receives a copy of the rows when set
	CSV io.Writer
	// Now is the run time, time.Now when zero
	Now time.Time
	// ExcludedAssignees overrides DefaultExcludedAssignees when non-nil
	ExcludedAssignees []string
}

// Result summarises a completed run
type Result struct {
	RunID      string
	TabName    string
	TotalItems int
	SubIssues  int
	Exported   int
	Rows       [][]string
}

// Exporter copies project items into a spreadsheet tab
type Exporter struct {
	client github.Client
	sink   Sink
}

// NewExporter creates a new exporter
func NewExporter(client github.Client, sink Sink) *Exporter {
	return &Exporter{client: client, sink: sink}
}

// TabName returns the tab used for a run at the given time
func TabName(now time.Time) string {
	return "Export_" + now.Format(dateLayout)
}

// Run fetches, filters and writes the project items
func (e *Exporter) Run(ctx context.Context, opts Options) (*Result, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := &Result{
		RunID:   uuid.New().String(),
		TabName: TabName(now),
	}
	log := slog.With("run_id", result.RunID)

	log.Info("resolving project",
		"owner", opts.Project.OwnerLogin,
		"project", opts.Project.ProjectNumber,
	)
	projectID, err := e.client.GetProjectID(ctx, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to get project ID: %w", err)
	}
	log.Info("found project", "project_id", projectID)

	e.logView(ctx, log, projectID, opts.ViewNumber)

	raw, err := e.client.GetProjectItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project items: %w", err)
	}
	result.TotalItems = len(raw)
	if len(raw) == 0 {
		return nil, ErrNoItems
	}
	log.Info("fetched project items", "count", len(raw))

	items := NormalizeAll(raw)
	for i := range items {
		if items[i].HasParent() {
			result.SubIssues++
		}
	}
	log.Info("found sub-issues", "sub_issues", result.SubIssues, "total", len(items))

	filter := NewFilter(now, opts.ExcludedAssignees)
	eligible := filter.Apply(items)
	result.Exported = len(eligible)
	log.Info("applied filters", "eligible", len(eligible), "total", len(items))

	result.Rows = Rows(eligible)

	if opts.CSV != nil {
		if err := WriteCSV(opts.CSV, result.Rows); err != nil {
			return nil, fmt.Errorf("failed to write CSV: %w", err)
		}
	}

	if opts.DryRun {
		log.Info("dry run, skipping spreadsheet write", "tab", result.TabName, "rows", len(result.Rows))
		return result, nil
	}

	if err := e.write(ctx, log, result.TabName, result.Rows, opts.CreateNewTab); err != nil {
		return nil, err
	}
	return result, nil
}

// logView reports the configured view. A failure here does not stop the run.
func (e *Exporter) logView(ctx context.Context, log *slog.Logger, projectID string, viewNumber int) {
	view, err := e.client.GetProjectView(ctx, projectID, viewNumber)
	if err != nil {
		log.Warn("no view configuration found, using default field order", "error", err)
		return
	}
	log.Info("found view",
		"name", view.Name,
		"number", view.Number,
		"layout", view.Layout,
		"fields", strings.Join(view.Fields, ", "),
	)
}

func (e *Exporter) write(ctx context.Context, log *slog.Logger, tab string, rows [][]string, createNewTab bool) error {
	if e.sink == nil {
		return fmt.Errorf("no spreadsheet configured")
	}

	if createNewTab {
		if err := e.sink.EnsureTab(ctx, tab); err != nil {
			log.Error("failed to prepare tab", "tab", tab, "error", err)
			return fmt.Errorf("failed to prepare tab %s: %w", tab, err)
		}
	}

	if err := e.sink.ReplaceTabContents(ctx, tab, rows); err != nil {
		log.Error("failed to export to sheet", "tab", tab, "error", err)
		return fmt.Errorf("failed to write tab %s: %w", tab, err)
	}

	log.Info("exported rows", "tab", tab, "rows", len(rows))
	return nil
}
