package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/sheetsdb/pkg/sheetsdb"
)

// printJSON writes v indented.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printRecords writes records as JSON or as a table in header order.
func (a *app) printRecords(w io.Writer, columns []string, records []map[string]any) error {
	if a.flags.jsonMode {
		if records == nil {
			records = []map[string]any{}
		}
		return printJSON(w, records)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = sheetsdb.Encode(rec[c], nil)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// printNames writes one name per line, or a JSON list.
func (a *app) printNames(w io.Writer, names []string) error {
	if a.flags.jsonMode {
		if names == nil {
			names = []string{}
		}
		return printJSON(w, names)
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}

// recordsOf reads the attributes of every row.
func recordsOf(rows []*sheetsdb.Row) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		attrs, err := row.Attributes()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Position(), err)
		}
		out = append(out, attrs)
	}
	return out, nil
}
