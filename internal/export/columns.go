package export

import (
	"strings"
)

// Column is an exported column and the source names it is read from, in
// priority order
type Column struct {
	Name       string
	Candidates []string
}

// Columns is the fixed export layout
var Columns = []Column{
	{Name: "Product", Candidates: []string{"Product"}},
	{Name: "Dev link", Candidates: []string{"Dev link", "Dev links"}},
	{Name: "High profile", Candidates: []string{"High profile"}},
	{Name: "Release type", Candidates: []string{"Release type"}},
	{Name: "Product type", Candidates: []string{"Product type"}},
	{Name: "Anticipated release date", Candidates: []string{"Anticipated release date"}},
	{Name: "Client organization/branch", Candidates: []string{"Client organization/branch"}},
	{Name: "Program contacts", Candidates: []string{"Client contacts"}},
	{Name: "Assignee (developer)", Candidates: []string{"assignees"}},
}

// Row is one exported line, one cell per entry in Columns
type Row []string

// Header returns the column names
func Header() Row {
	header := make(Row, 0, len(Columns))
	for _, c := range Columns {
		header = append(header, c.Name)
	}
	return header
}

// Project renders an item as a Row
func Project(item *Item) Row {
	row := make(Row, 0, len(Columns))
	for _, c := range Columns {
		row = append(row, lookup(item, c.Candidates))
	}
	return row
}

// Rows returns the header followed by one row per item
func Rows(items []Item) [][]string {
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, Header())
	for i := range items {
		rows = append(rows, Project(&items[i]))
	}
	return rows
}

// lookup returns the first candidate found, checking direct attributes
// before custom fields for each name.
func lookup(item *Item, candidates []string) string {
	for _, name := range candidates {
		if v, ok := item.attribute(name); ok {
			return v
		}
		if v, ok := item.CustomField(name); ok {
			return v.String()
		}
	}
	return ""
}

func joinList(values []string) string {
	return strings.Join(values, ", ")
}
