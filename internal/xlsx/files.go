package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/sheetsdb/internal/locator"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// node is a file or directory under the drive.
type node struct {
	drive    *Drive
	id       string
	name     string
	kind     string
	modified time.Time
}

func (n *node) ID() string       { return n.id }
func (n *node) Name() string     { return n.name }
func (n *node) Kind() string     { return n.kind }
func (n *node) HumanURL() string { return locator.Format(n.drive.base, n.kind, n.id) }

// CreatedTime returns the modification time; file systems do not portably
// record creation.
func (n *node) CreatedTime() time.Time  { return n.modified }
func (n *node) ModifiedTime() time.Time { return n.modified }

// Parents returns the containing directory. The drive root has none.
func (n *node) Parents() ([]types.RawCollection, error) {
	if err := n.drive.checkOpen(); err != nil {
		return nil, err
	}
	if n.id == rootID {
		return []types.RawCollection{}, nil
	}
	parent, err := n.drive.stat(path.Dir(n.id))
	if err != nil {
		return nil, err
	}
	return []types.RawCollection{&Collection{node: parent}}, nil
}

// Delete removes the file, or the directory and everything in it. Open
// workbooks below it are discarded.
func (n *node) Delete() error {
	if err := n.drive.checkOpen(); err != nil {
		return err
	}
	if n.id == rootID {
		return fmt.Errorf("%w: the root collection cannot be deleted", types.ErrInvalidName)
	}
	n.drive.forget(n.id)
	target := n.drive.abs(n.id)
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", types.ErrResourceNotFound, n.id)
	}
	return os.RemoveAll(target)
}

// ReloadMetadata re-reads the modification time.
func (n *node) ReloadMetadata() error {
	if err := n.drive.checkOpen(); err != nil {
		return err
	}
	fresh, err := n.drive.stat(n.id)
	if err != nil {
		return err
	}
	n.modified = fresh.modified
	return nil
}

// Collection is a directory.
type Collection struct {
	*node
}

var _ types.RawCollection = (*Collection)(nil)

func (c *Collection) Subcollections() ([]types.RawCollection, error) {
	nodes, err := c.list(types.KindCollection)
	if err != nil {
		return nil, err
	}
	out := make([]types.RawCollection, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Collection{node: n})
	}
	return out, nil
}

func (c *Collection) Spreadsheets() ([]types.RawSpreadsheet, error) {
	nodes, err := c.list(types.KindSpreadsheet)
	if err != nil {
		return nil, err
	}
	out := make([]types.RawSpreadsheet, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Spreadsheet{node: n})
	}
	return out, nil
}

// SubcollectionByTitle returns the child directory named title, or nil.
func (c *Collection) SubcollectionByTitle(title string) (types.RawCollection, error) {
	n, err := c.child(title, types.KindCollection)
	if err != nil || n == nil {
		return nil, err
	}
	return &Collection{node: n}, nil
}

// SpreadsheetByTitle returns the child workbook title.xlsx, or nil.
func (c *Collection) SpreadsheetByTitle(title string) (types.RawSpreadsheet, error) {
	n, err := c.child(title+Extension, types.KindSpreadsheet)
	if err != nil || n == nil {
		return nil, err
	}
	return &Spreadsheet{node: n}, nil
}

// CreateSubcollection makes a child directory.
func (c *Collection) CreateSubcollection(title string) (types.RawCollection, error) {
	id, err := c.childID(title)
	if err != nil {
		return nil, err
	}
	if err := os.Mkdir(c.drive.abs(id), 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %q already exists", types.ErrInvalidName, title)
		}
		return nil, err
	}
	n, err := c.drive.stat(id)
	if err != nil {
		return nil, err
	}
	return &Collection{node: n}, nil
}

// CreateSpreadsheet writes a new workbook holding one empty sheet,
// "Sheet1".
func (c *Collection) CreateSpreadsheet(title string) (types.RawSpreadsheet, error) {
	id, err := c.childID(title + Extension)
	if err != nil {
		return nil, err
	}
	target := c.drive.abs(id)
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("%w: %q already exists", types.ErrInvalidName, title)
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SaveAs(target); err != nil {
		return nil, err
	}
	n, err := c.drive.stat(id)
	if err != nil {
		return nil, err
	}
	return &Spreadsheet{node: n}, nil
}

func (c *Collection) childID(name string) (string, error) {
	if err := c.drive.checkOpen(); err != nil {
		return "", err
	}
	if name == "" || name == Extension || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	return path.Join(c.id, name), nil
}

func (c *Collection) child(name, kind string) (*node, error) {
	id, err := c.childID(name)
	if err != nil {
		return nil, err
	}
	n, err := c.drive.stat(id)
	if errors.Is(err, types.ErrResourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n.kind != kind {
		return nil, nil
	}
	return n, nil
}

// list returns the children of one kind sorted by name. Hidden entries and
// Office lock files are skipped.
func (c *Collection) list(kind string) ([]*node, error) {
	if err := c.drive.checkOpen(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.drive.abs(c.id))
	if err != nil {
		return nil, err
	}
	var out []*node
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		n := c.drive.newNode(path.Join(c.id, e.Name()), info)
		if n.kind == kind {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *node) int { return strings.Compare(a.name, b.name) })
	return out, nil
}

// Spreadsheet is an .xlsx workbook.
type Spreadsheet struct {
	*node
}

var _ types.RawSpreadsheet = (*Spreadsheet)(nil)

// WorksheetByTitle returns the sheet with the given title, or nil.
func (s *Spreadsheet) WorksheetByTitle(title string) (types.RawWorksheet, error) {
	if err := s.drive.checkOpen(); err != nil {
		return nil, err
	}
	wb := s.drive.workbook(s.id)
	ok, err := wb.hasSheet(title)
	if err != nil || !ok {
		return nil, err
	}
	return wb.sheet(title), nil
}

// AddWorksheet appends an empty sheet and saves the workbook.
func (s *Spreadsheet) AddWorksheet(title string) (types.RawWorksheet, error) {
	if err := s.drive.checkOpen(); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, types.ErrInvalidName
	}
	wb := s.drive.workbook(s.id)
	if err := wb.addSheet(title); err != nil {
		return nil, err
	}
	return wb.sheet(title), nil
}

// Worksheets lists sheets in workbook order.
func (s *Spreadsheet) Worksheets() ([]types.RawWorksheet, error) {
	if err := s.drive.checkOpen(); err != nil {
		return nil, err
	}
	wb := s.drive.workbook(s.id)
	titles, err := wb.sheetList()
	if err != nil {
		return nil, err
	}
	out := make([]types.RawWorksheet, 0, len(titles))
	for _, title := range titles {
		out = append(out, wb.sheet(title))
	}
	return out, nil
}
