// Package sqlite implements a Drive stored in one SQLite database.
//
// Collections and spreadsheets are rows of the files table; worksheets and
// their non-blank cells have tables of their own. Cell writes are kept as
// pending writes on each worksheet and committed in one transaction when the
// worksheet is synchronized.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/sheetsdb/internal/locator"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// DatabaseFile is the file name Open creates inside the data directory.
const DatabaseFile = "sheetsdb.db"

// rootName names the top-level collection created with a new database.
const rootName = "root"

// Drive implements types.Drive on SQLite.
type Drive struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	base   string
	rootID string
	logger *slog.Logger

	// sheets keeps one Worksheet per id so pending writes are shared by
	// every caller that finds the sheet.
	sheetsMu sync.Mutex
	sheets   map[string]*Worksheet
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

// Open opens or creates the database in dataDir, creating the directory if
// needed. An empty dataDir means the working directory.
func Open(dataDir string, opts ...Option) (*Drive, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dataDir, DatabaseFile), opts...)
}

// OpenPath opens or creates the database file at path.
func OpenPath(path string, opts ...Option) (*Drive, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps the foreign key pragma and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	d := &Drive{
		db:     db,
		base:   locator.DefaultBase,
		logger: slog.Default(),
		sheets: make(map[string]*Worksheet),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("backend", "sqlite")
	if err := d.ensureRoot(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Drive) ensureRoot() error {
	var id string
	err := d.db.QueryRow(
		`SELECT file_id FROM files WHERE parent_id IS NULL AND kind = ? ORDER BY created_at LIMIT 1`,
		types.KindCollection,
	).Scan(&id)
	switch {
	case err == nil:
		d.rootID = id
		return nil
	case errors.Is(err, sql.ErrNoRows):
		f, err := d.insertFile(rootName, types.KindCollection, "")
		if err != nil {
			return fmt.Errorf("create root collection: %w", err)
		}
		d.rootID = f.id
		return nil
	default:
		return err
	}
}

// checkOpen returns ErrDriveClosed after Close. The caller must hold d.mu.
func (d *Drive) checkOpen() error {
	if d.closed {
		return types.ErrDriveClosed
	}
	return nil
}

// FileByID returns the file with the given id.
func (d *Drive) FileByID(id string) (types.File, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	f, err := d.loadFile(id)
	if err != nil {
		return nil, err
	}
	return d.wrap(f), nil
}

// FileByURL parses the locator and returns the file it names.
func (d *Drive) FileByURL(url string) (types.File, error) {
	id, err := locator.Parse(url)
	if err != nil {
		return nil, err
	}
	return d.FileByID(id)
}

// Root returns the top-level collection.
func (d *Drive) Root() (types.RawCollection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	f, err := d.loadFile(d.rootID)
	if err != nil {
		return nil, err
	}
	return &Collection{file: f}, nil
}

// Close closes the database. Pending cell writes that were never
// synchronized are lost. Close is idempotent.
func (d *Drive) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

const selectFile = `SELECT file_id, name, kind, parent_id, created_at, updated_at FROM files`

func (d *Drive) loadFile(id string) (*file, error) {
	row := d.db.QueryRow(selectFile+` WHERE file_id = ?`, id)
	f, err := d.scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrResourceNotFound, id)
	}
	return f, err
}

// children lists the files under parentID of one kind in creation order.
// When title is not empty only files with that name are returned.
func (d *Drive) children(parentID, kind, title string) ([]*file, error) {
	query := selectFile + ` WHERE parent_id = ? AND kind = ?`
	args := []any{parentID, kind}
	if title != "" {
		query += ` AND name = ?`
		args = append(args, title)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*file
	for rows.Next() {
		f, err := d.scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (d *Drive) scanFile(s rowScanner) (*file, error) {
	var (
		f                file
		parent           sql.NullString
		created, updated string
	)
	if err := s.Scan(&f.id, &f.name, &f.kind, &parent, &created, &updated); err != nil {
		return nil, err
	}
	f.drive = d
	f.parentID = parent.String
	var err error
	if f.created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("file %s created_at: %w", f.id, err)
	}
	if f.modified, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("file %s updated_at: %w", f.id, err)
	}
	return &f, nil
}

func (d *Drive) insertFile(name, kind, parentID string) (*file, error) {
	now := time.Now().UTC()
	f := &file{
		drive:    d,
		id:       generateUUID(),
		name:     name,
		kind:     kind,
		parentID: parentID,
		created:  now,
		modified: now,
	}
	var parent any
	if parentID != "" {
		parent = parentID
	}
	_, err := d.db.Exec(
		`INSERT INTO files (file_id, name, kind, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.id, f.name, f.kind, parent, formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// touch bumps a file's modification time.
func (d *Drive) touch(id string) error {
	_, err := d.db.Exec(`UPDATE files SET updated_at = ? WHERE file_id = ?`, nowText(), id)
	return err
}

func (d *Drive) wrap(f *file) types.File {
	switch f.kind {
	case types.KindCollection:
		return &Collection{file: f}
	case types.KindSpreadsheet:
		return &Spreadsheet{file: f}
	default:
		return f
	}
}

// worksheet returns the shared instance for a worksheet id.
func (d *Drive) worksheet(id, title, spreadsheetID string) *Worksheet {
	d.sheetsMu.Lock()
	defer d.sheetsMu.Unlock()
	if w, ok := d.sheets[id]; ok {
		return w
	}
	w := newWorksheet(d, id, title, spreadsheetID)
	d.sheets[id] = w
	return w
}

// forgetWorksheets drops cached worksheets whose rows were deleted.
func (d *Drive) forgetWorksheets() {
	d.sheetsMu.Lock()
	defer d.sheetsMu.Unlock()
	for id, w := range d.sheets {
		var one int
		err := d.db.QueryRow(`SELECT 1 FROM worksheets WHERE worksheet_id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			w.detach()
			delete(d.sheets, id)
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nowText() string {
	return formatTime(time.Now())
}

// generateUUID generates a new UUID v7 for file and worksheet ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
