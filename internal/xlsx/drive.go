// Package xlsx implements a Drive over a directory tree of Excel workbooks.
//
// Directories are collections, .xlsx files are spreadsheets, and the sheets
// of a workbook are its worksheets. File ids are slash-separated paths
// relative to the drive directory; the directory itself is ".".
//
// Cell writes stay in the open workbook until a worksheet is synchronized,
// which saves the whole workbook. Reload reopens the workbook from disk, so
// it discards unsaved writes on every sheet of that workbook.
package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mesh-intelligence/sheetsdb/internal/locator"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Extension marks the files treated as spreadsheets.
const Extension = ".xlsx"

const rootID = "."

// Drive implements types.Drive on a directory.
type Drive struct {
	mu     sync.RWMutex
	dir    string
	base   string
	closed bool
	logger *slog.Logger

	booksMu sync.Mutex
	books   map[string]*workbook
}

var _ types.Drive = (*Drive)(nil)

// Option configures a Drive.
type Option func(*Drive)

// WithLogger sets the drive's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Drive) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open returns a drive rooted at dir, creating the directory if needed.
func Open(dir string, opts ...Option) (*Drive, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: xlsx drive needs a directory", types.ErrDataDirRequired)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	d := &Drive{
		dir:    abs,
		base:   locator.DefaultBase,
		logger: slog.Default(),
		books:  make(map[string]*workbook),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("backend", "xlsx")
	return d, nil
}

// Dir returns the absolute directory the drive is rooted at.
func (d *Drive) Dir() string { return d.dir }

func (d *Drive) checkOpen() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return types.ErrDriveClosed
	}
	return nil
}

// FileByID returns the file at the relative path id.
func (d *Drive) FileByID(id string) (types.File, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	n, err := d.stat(id)
	if err != nil {
		return nil, err
	}
	return d.wrap(n), nil
}

// FileByURL parses the locator and returns the file it names.
func (d *Drive) FileByURL(url string) (types.File, error) {
	id, err := locator.Parse(url)
	if err != nil {
		return nil, err
	}
	return d.FileByID(id)
}

// Root returns the drive directory.
func (d *Drive) Root() (types.RawCollection, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	n, err := d.stat(rootID)
	if err != nil {
		return nil, err
	}
	return &Collection{node: n}, nil
}

// Close releases every open workbook without saving. Close is idempotent.
func (d *Drive) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.booksMu.Lock()
	defer d.booksMu.Unlock()
	var errs []error
	for id, wb := range d.books {
		errs = append(errs, wb.close())
		delete(d.books, id)
	}
	return errors.Join(errs...)
}

// cleanID normalizes id and rejects paths that leave the drive.
func cleanID(id string) (string, error) {
	if id == "" {
		id = rootID
	}
	clean := path.Clean(filepath.ToSlash(id))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", types.ErrResourceNotFound, id)
	}
	return clean, nil
}

func (d *Drive) abs(id string) string {
	return filepath.Join(d.dir, filepath.FromSlash(id))
}

func (d *Drive) stat(id string) (*node, error) {
	clean, err := cleanID(id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(d.abs(clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrResourceNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return d.newNode(clean, info), nil
}

func (d *Drive) newNode(id string, info fs.FileInfo) *node {
	n := &node{drive: d, id: id, modified: info.ModTime().UTC()}
	switch {
	case info.IsDir():
		n.kind = types.KindCollection
		n.name = info.Name()
		if id == rootID {
			n.name = filepath.Base(d.dir)
		}
	case strings.EqualFold(filepath.Ext(info.Name()), Extension):
		n.kind = types.KindSpreadsheet
		n.name = strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
	default:
		n.kind = types.KindFile
		n.name = info.Name()
	}
	return n
}

func (d *Drive) wrap(n *node) types.File {
	switch n.kind {
	case types.KindCollection:
		return &Collection{node: n}
	case types.KindSpreadsheet:
		return &Spreadsheet{node: n}
	default:
		return n
	}
}

// workbook returns the shared handle for a spreadsheet id.
func (d *Drive) workbook(id string) *workbook {
	d.booksMu.Lock()
	defer d.booksMu.Unlock()
	if wb, ok := d.books[id]; ok {
		return wb
	}
	wb := newWorkbook(d, id)
	d.books[id] = wb
	return wb
}

// forget closes and drops open workbooks at or below id.
func (d *Drive) forget(id string) {
	d.booksMu.Lock()
	defer d.booksMu.Unlock()
	for bookID, wb := range d.books {
		if id == rootID || bookID == id || strings.HasPrefix(bookID, id+"/") {
			_ = wb.close()
			delete(d.books, bookID)
		}
	}
}
