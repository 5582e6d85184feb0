package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/sheetsdb/pkg/drive"
	"github.com/mesh-intelligence/sheetsdb/pkg/sheetsdb"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// openSession opens the configured backend. The caller must Close the
// session.
func (a *app) openSession() (*sheetsdb.Session, error) {
	cfg, err := a.driveConfig()
	if err != nil {
		return nil, err
	}
	d, err := drive.Open(cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	a.logger.Debug("opened drive", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return sheetsdb.NewSession(d, sheetsdb.WithSessionLogger(a.logger)), nil
}

// findBook returns the spreadsheet with the given title in the root
// collection.
func findBook(s *sheetsdb.Session, title string) (*sheetsdb.Spreadsheet, error) {
	root, err := s.Drive().Root()
	if err != nil {
		return nil, err
	}
	raw, err := root.SpreadsheetByTitle(title)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: spreadsheet %q", types.ErrResourceNotFound, title)
	}
	return s.WrapSpreadsheet(raw, nil)
}

// openTable binds a worksheet to a schema inferred from its header row.
func openTable(s *sheetsdb.Session, book, sheet string) (*sheetsdb.Worksheet, error) {
	b, err := findBook(s, book)
	if err != nil {
		return nil, err
	}
	raw, err := b.Raw().(types.RawSpreadsheet).WorksheetByTitle(sheet)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: worksheet %q in %s", types.ErrChildResourceNotFound, sheet, book)
	}
	header, err := headerRow(raw)
	if err != nil {
		return nil, err
	}
	schema, err := inferSchema(sheet, header)
	if err != nil {
		return nil, err
	}
	return b.FindWorksheet(sheet, schema, false)
}

func headerRow(raw types.RawWorksheet) ([]string, error) {
	rows, err := raw.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// inferSchema declares one text attribute per non-blank header besides the
// integer id, which the header must contain.
func inferSchema(name string, header []string) (*sheetsdb.Schema, error) {
	if !slices.Contains(header, sheetsdb.IDAttribute) {
		return nil, fmt.Errorf("%w: %q header in worksheet %q", types.ErrColumnNotFound, sheetsdb.IDAttribute, name)
	}
	b := sheetsdb.Define(name)
	seen := map[string]bool{sheetsdb.IDAttribute: true}
	for _, h := range header {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		b.Attribute(h)
	}
	return b.Build()
}

// withID puts the id column first, adding it when missing.
func withID(header []string) []string {
	out := []string{sheetsdb.IDAttribute}
	for _, h := range header {
		if h != sheetsdb.IDAttribute {
			out = append(out, h)
		}
	}
	return out
}

// parseAssignment splits "attr=value".
func parseAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: invalid filter %q (expected attr=value)", errUsage, arg)
	}
	return key, value, nil
}
