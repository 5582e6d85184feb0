package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/sheetsdb/internal/locator"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// file is a row of the files table.
type file struct {
	drive    *Drive
	id       string
	name     string
	kind     string
	parentID string
	created  time.Time
	modified time.Time
}

func (f *file) ID() string              { return f.id }
func (f *file) Name() string            { return f.name }
func (f *file) Kind() string            { return f.kind }
func (f *file) HumanURL() string        { return locator.Format(f.drive.base, f.kind, f.id) }
func (f *file) CreatedTime() time.Time  { return f.created }
func (f *file) ModifiedTime() time.Time { return f.modified }

// Parents returns the containing collection. The root has none.
func (f *file) Parents() ([]types.RawCollection, error) {
	d := f.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if f.parentID == "" {
		return []types.RawCollection{}, nil
	}
	parent, err := d.loadFile(f.parentID)
	if err != nil {
		return nil, err
	}
	return []types.RawCollection{&Collection{file: parent}}, nil
}

// Delete removes the file. Foreign keys cascade the delete to descendants,
// worksheets, and cells.
func (f *file) Delete() error {
	d := f.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if f.id == d.rootID {
		return fmt.Errorf("%w: the root collection cannot be deleted", types.ErrInvalidName)
	}
	res, err := d.db.Exec(`DELETE FROM files WHERE file_id = ?`, f.id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrResourceNotFound, f.id)
	}
	d.forgetWorksheets()
	return nil
}

// ReloadMetadata re-reads name and timestamps.
func (f *file) ReloadMetadata() error {
	d := f.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	fresh, err := d.loadFile(f.id)
	if err != nil {
		return err
	}
	f.name = fresh.name
	f.created = fresh.created
	f.modified = fresh.modified
	return nil
}

// Collection is a folder of subcollections and spreadsheets.
type Collection struct {
	*file
}

var _ types.RawCollection = (*Collection)(nil)

func (c *Collection) Subcollections() ([]types.RawCollection, error) {
	files, err := c.list(types.KindCollection, "")
	if err != nil {
		return nil, err
	}
	out := make([]types.RawCollection, 0, len(files))
	for _, f := range files {
		out = append(out, &Collection{file: f})
	}
	return out, nil
}

func (c *Collection) Spreadsheets() ([]types.RawSpreadsheet, error) {
	files, err := c.list(types.KindSpreadsheet, "")
	if err != nil {
		return nil, err
	}
	out := make([]types.RawSpreadsheet, 0, len(files))
	for _, f := range files {
		out = append(out, &Spreadsheet{file: f})
	}
	return out, nil
}

// SubcollectionByTitle returns the first child collection named title, or
// nil.
func (c *Collection) SubcollectionByTitle(title string) (types.RawCollection, error) {
	files, err := c.list(types.KindCollection, title)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &Collection{file: files[0]}, nil
}

// SpreadsheetByTitle returns the first child spreadsheet named title, or
// nil.
func (c *Collection) SpreadsheetByTitle(title string) (types.RawSpreadsheet, error) {
	files, err := c.list(types.KindSpreadsheet, title)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &Spreadsheet{file: files[0]}, nil
}

// CreateSubcollection adds an empty child collection.
func (c *Collection) CreateSubcollection(title string) (types.RawCollection, error) {
	f, err := c.create(title, types.KindCollection)
	if err != nil {
		return nil, err
	}
	return &Collection{file: f}, nil
}

// CreateSpreadsheet adds a spreadsheet holding one empty sheet, "Sheet1".
func (c *Collection) CreateSpreadsheet(title string) (types.RawSpreadsheet, error) {
	f, err := c.create(title, types.KindSpreadsheet)
	if err != nil {
		return nil, err
	}
	s := &Spreadsheet{file: f}
	if _, err := s.AddWorksheet("Sheet1"); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Collection) list(kind, title string) ([]*file, error) {
	d := c.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.children(c.id, kind, title)
}

func (c *Collection) create(title, kind string) (*file, error) {
	if title == "" {
		return nil, types.ErrInvalidName
	}
	d := c.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	f, err := d.insertFile(title, kind, c.id)
	if err != nil {
		return nil, err
	}
	return f, d.touch(c.id)
}

// Spreadsheet is a file of ordered worksheets.
type Spreadsheet struct {
	*file
}

var _ types.RawSpreadsheet = (*Spreadsheet)(nil)

// WorksheetByTitle returns the sheet with the given title, or nil.
func (s *Spreadsheet) WorksheetByTitle(title string) (types.RawWorksheet, error) {
	d := s.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	var id string
	err := d.db.QueryRow(
		`SELECT worksheet_id FROM worksheets WHERE spreadsheet_id = ? AND title = ?`,
		s.id, title,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d.worksheet(id, title, s.id), nil
}

// AddWorksheet appends an empty sheet. Titles are unique per spreadsheet.
func (s *Spreadsheet) AddWorksheet(title string) (types.RawWorksheet, error) {
	if title == "" {
		return nil, types.ErrInvalidName
	}
	existing, err := s.WorksheetByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: worksheet %q already exists", types.ErrInvalidName, title)
	}

	d := s.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	id := generateUUID()
	_, err = d.db.Exec(
		`INSERT INTO worksheets (worksheet_id, spreadsheet_id, title, ordinal)
         SELECT ?, ?, ?, COALESCE(MAX(ordinal), 0) + 1 FROM worksheets WHERE spreadsheet_id = ?`,
		id, s.id, title, s.id,
	)
	if err != nil {
		return nil, err
	}
	if err := d.touch(s.id); err != nil {
		return nil, err
	}
	return d.worksheet(id, title, s.id), nil
}

// Worksheets lists sheets in the order they were added.
func (s *Spreadsheet) Worksheets() ([]types.RawWorksheet, error) {
	d := s.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(
		`SELECT worksheet_id, title FROM worksheets WHERE spreadsheet_id = ? ORDER BY ordinal`,
		s.id,
	)
	if err != nil {
		return nil, err
	}
	type entry struct{ id, title string }
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.title); err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]types.RawWorksheet, 0, len(entries))
	for _, e := range entries {
		out = append(out, d.worksheet(e.id, e.title, s.id))
	}
	return out, nil
}
