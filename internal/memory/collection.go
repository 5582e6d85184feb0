package memory

import (
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Collection is a folder of subcollections and spreadsheets.
type Collection struct {
	*node
}

var _ types.RawCollection = (*Collection)(nil)

// Subcollections lists child collections in creation order.
func (c *Collection) Subcollections() ([]types.RawCollection, error) {
	d := c.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []types.RawCollection
	for _, id := range c.children {
		if sub, ok := d.collections[id]; ok {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Spreadsheets lists child spreadsheets in creation order.
func (c *Collection) Spreadsheets() ([]types.RawSpreadsheet, error) {
	d := c.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []types.RawSpreadsheet
	for _, id := range c.children {
		if s, ok := d.spreadsheets[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// SubcollectionByTitle returns the first child collection named title.
func (c *Collection) SubcollectionByTitle(title string) (types.RawCollection, error) {
	subs, err := c.Subcollections()
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if sub.Name() == title {
			return sub, nil
		}
	}
	return nil, nil
}

// SpreadsheetByTitle returns the first child spreadsheet named title.
func (c *Collection) SpreadsheetByTitle(title string) (types.RawSpreadsheet, error) {
	sheets, err := c.Spreadsheets()
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if s.Name() == title {
			return s, nil
		}
	}
	return nil, nil
}

// CreateSubcollection adds an empty child collection.
func (c *Collection) CreateSubcollection(title string) (types.RawCollection, error) {
	if title == "" {
		return nil, types.ErrInvalidName
	}
	return c.drive.addCollection(title, c.id), nil
}

// CreateSpreadsheet adds a spreadsheet holding one empty sheet, "Sheet1".
func (c *Collection) CreateSpreadsheet(title string) (types.RawSpreadsheet, error) {
	if title == "" {
		return nil, types.ErrInvalidName
	}
	s := c.drive.addSpreadsheet(title, c.id)
	if _, err := s.AddWorksheet("Sheet1"); err != nil {
		return nil, err
	}
	return s, nil
}
