package sheetsdb

import "strings"

// Column is a header cell: its name and 1-based position in the sheet.
type Column struct {
	Name     string
	Position int
}

// Columns is the directory of named columns found in a sheet's header row,
// in sheet order.
type Columns []Column

// NewColumns builds the directory from a header row. Blank header cells get
// no column and are never addressable.
func NewColumns(header []string) Columns {
	cols := make(Columns, 0, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			continue
		}
		cols = append(cols, Column{Name: name, Position: i + 1})
	}
	return cols
}

// Lookup returns the first column with the given name.
func (c Columns) Lookup(name string) (Column, bool) {
	for _, col := range c {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Names returns the column names in sheet order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}
	return names
}
