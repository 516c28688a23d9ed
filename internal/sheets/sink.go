// Package sheets writes exported rows into a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// clearColumns is the column span cleared before writing
	clearColumns = "A:Z"
	// valueInputOption keeps cells as plain text
	valueInputOption = "RAW"
)

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Sink writes rows into tabs of one spreadsheet
type Sink struct {
	service       *sheets.Service
	spreadsheetID string
}

// New creates a sink for the spreadsheet. The ID may also be given as a
// spreadsheet URL.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sink, error) {
	id := SpreadsheetID(spreadsheetID)
	if id == "" {
		return nil, fmt.Errorf("spreadsheet ID not set")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	return &Sink{service: service, spreadsheetID: id}, nil
}

// SpreadsheetID extracts the ID from a spreadsheet URL, returning other
// values trimmed but otherwise unchanged
func SpreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	if match := spreadsheetURL.FindStringSubmatch(s); len(match) == 2 {
		return match[1]
	}
	return s
}

// CredentialsOption authenticates with a service account. credentials is
// either the JSON key itself or the path of a file holding it.
func CredentialsOption(ctx context.Context, credentials string) (option.ClientOption, error) {
	data := []byte(strings.TrimSpace(credentials))
	if len(data) == 0 {
		return nil, fmt.Errorf("Google credentials not set")
	}

	if data[0] != '{' {
		b, err := os.ReadFile(string(data))
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		data = b
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid Google credentials: %w", err)
	}

	return option.WithTokenSource(creds.TokenSource), nil
}

// EnsureTab creates the tab unless the spreadsheet already has it
func (s *Sink) EnsureTab(ctx context.Context, name string) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to fetch spreadsheet: %w", WrapError(err))
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			slog.Info("tab already exists, replacing its content", "tab", name)
			return nil
		}
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			},
		},
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create tab: %w", WrapError(err))
	}

	slog.Info("created new tab", "tab", name)
	return nil
}

// ReplaceTabContents clears the tab and writes rows starting at A1
func (s *Sink) ReplaceTabContents(ctx context.Context, name string, rows [][]string) error {
	clearRange := a1(name, clearColumns)
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		// An empty tab can refuse the clear; the update below still replaces it.
		slog.Warn("could not clear existing data", "tab", name, "error", err)
	} else {
		slog.Debug("cleared existing data", "tab", name)
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}

	vr := sheets.ValueRange{Values: values}
	if _, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, a1(name, "A1"), &vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("failed to write rows: %w", WrapError(err))
	}

	slog.Info("wrote rows", "tab", name, "rows", len(rows))
	return nil
}

// a1 builds an A1 range on a tab, quoting the tab name
func a1(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), cells)
}
