package sqlite

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mesh-intelligence/sheetsdb/internal/grid"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

type cellKey struct{ row, col int }

// Worksheet reads its cells on first use and keeps writes as pending writes
// until Synchronize commits them. Reload discards them.
type Worksheet struct {
	drive         *Drive
	id            string
	title         string
	spreadsheetID string

	mu       sync.Mutex
	loaded   bool
	detached bool
	working  *grid.Grid
	pending  map[cellKey]string
}

var _ types.RawWorksheet = (*Worksheet)(nil)

func newWorksheet(d *Drive, id, title, spreadsheetID string) *Worksheet {
	return &Worksheet{
		drive:         d,
		id:            id,
		title:         title,
		spreadsheetID: spreadsheetID,
		pending:       make(map[cellKey]string),
	}
}

func (w *Worksheet) ID() string    { return w.id }
func (w *Worksheet) Title() string { return w.title }

// detach marks a deleted worksheet. Later calls fail with
// ErrResourceNotFound.
func (w *Worksheet) detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detached = true
	w.pending = make(map[cellKey]string)
}

// load reads every stored cell. The caller must hold w.mu.
func (w *Worksheet) load() error {
	if w.detached {
		return fmt.Errorf("%w: worksheet %s", types.ErrResourceNotFound, w.id)
	}
	if w.loaded {
		return nil
	}
	d := w.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	rows, err := d.db.Query(`SELECT row_num, col_num, value FROM cells WHERE worksheet_id = ?`, w.id)
	if err != nil {
		return err
	}
	defer rows.Close()

	g := grid.New(nil)
	for rows.Next() {
		var (
			r, c  int
			value string
		)
		if err := rows.Scan(&r, &c, &value); err != nil {
			return err
		}
		if err := g.Set(r, c, value); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	w.working = g
	w.loaded = true
	return nil
}

// Cell returns the stored value. SQLite keeps no display formatting, so it
// matches InputValue.
func (w *Worksheet) Cell(row, col int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return "", err
	}
	return w.working.Get(row, col)
}

func (w *Worksheet) InputValue(row, col int) (string, error) {
	return w.Cell(row, col)
}

// SetCell records a pending write.
func (w *Worksheet) SetCell(row, col int, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return err
	}
	if err := w.working.Set(row, col, value); err != nil {
		return err
	}
	w.pending[cellKey{row, col}] = value
	return nil
}

// UpdateCells records a pending write for every cell of the block.
func (w *Worksheet) UpdateCells(row, col int, values [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return err
	}
	if err := w.working.Update(row, col, values); err != nil {
		return err
	}
	for i, line := range values {
		for j, v := range line {
			w.pending[cellKey{row + i, col + j}] = v
		}
	}
	return nil
}

func (w *Worksheet) Rows() ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return nil, err
	}
	return w.working.Rows(), nil
}

func (w *Worksheet) NumRows() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return 0, err
	}
	return w.working.NumRows(), nil
}

func (w *Worksheet) NumCols() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(); err != nil {
		return 0, err
	}
	return w.working.NumCols(), nil
}

// Pending returns how many cell writes await Synchronize.
func (w *Worksheet) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Synchronize commits pending writes in one transaction. Blank values
// delete their cell row.
func (w *Worksheet) Synchronize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return fmt.Errorf("%w: worksheet %s", types.ErrResourceNotFound, w.id)
	}
	if len(w.pending) == 0 {
		return nil
	}

	d := w.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`INSERT INTO cells (worksheet_id, row_num, col_num, value) VALUES (?, ?, ?, ?)
        ON CONFLICT (worksheet_id, row_num, col_num) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return err
	}
	defer upsert.Close()
	remove, err := tx.Prepare(`DELETE FROM cells WHERE worksheet_id = ? AND row_num = ? AND col_num = ?`)
	if err != nil {
		return err
	}
	defer remove.Close()

	keys := slices.SortedFunc(maps.Keys(w.pending), func(a, b cellKey) int {
		if a.row != b.row {
			return a.row - b.row
		}
		return a.col - b.col
	})
	for _, k := range keys {
		v := w.pending[k]
		if v == "" {
			_, err = remove.Exec(w.id, k.row, k.col)
		} else {
			_, err = upsert.Exec(w.id, k.row, k.col, v)
		}
		if err != nil {
			return fmt.Errorf("write cell (%d,%d) of %s: %w", k.row, k.col, w.title, err)
		}
	}
	if _, err := tx.Exec(`UPDATE files SET updated_at = ? WHERE file_id = ?`, nowText(), w.spreadsheetID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	d.logger.Debug("committed cells", "worksheet", w.title, "count", len(keys))
	w.pending = make(map[cellKey]string)
	return nil
}

// Reload discards pending writes. Cells are re-read on next access.
func (w *Worksheet) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = make(map[cellKey]string)
	w.loaded = false
	w.working = nil
	return nil
}
