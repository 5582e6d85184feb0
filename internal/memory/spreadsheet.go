package memory

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Spreadsheet holds an ordered list of worksheets.
type Spreadsheet struct {
	*node

	sheetsMu sync.RWMutex
	sheets   []*Worksheet
}

var _ types.RawSpreadsheet = (*Spreadsheet)(nil)

// WorksheetByTitle returns the sheet with the given title, or nil.
func (s *Spreadsheet) WorksheetByTitle(title string) (types.RawWorksheet, error) {
	s.sheetsMu.RLock()
	defer s.sheetsMu.RUnlock()
	for _, w := range s.sheets {
		if w.title == title {
			return w, nil
		}
	}
	return nil, nil
}

// AddWorksheet appends an empty sheet. Titles are unique per spreadsheet.
func (s *Spreadsheet) AddWorksheet(title string) (types.RawWorksheet, error) {
	if title == "" {
		return nil, types.ErrInvalidName
	}
	s.sheetsMu.Lock()
	defer s.sheetsMu.Unlock()
	for _, w := range s.sheets {
		if w.title == title {
			return nil, fmt.Errorf("%w: worksheet %q already exists", types.ErrInvalidName, title)
		}
	}
	w := NewWorksheet(title, nil)
	s.sheets = append(s.sheets, w)
	return w, nil
}

// Worksheets lists sheets in display order.
func (s *Spreadsheet) Worksheets() ([]types.RawWorksheet, error) {
	s.sheetsMu.RLock()
	defer s.sheetsMu.RUnlock()
	out := make([]types.RawWorksheet, len(s.sheets))
	for i, w := range s.sheets {
		out[i] = w
	}
	return out, nil
}
