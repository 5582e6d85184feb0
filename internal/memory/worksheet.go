package memory

import (
	"strings"
	"sync"

	"github.com/mesh-intelligence/sheetsdb/internal/grid"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Worksheet keeps a committed grid and a working copy. Writes land in the
// working copy and become committed on Synchronize; Reload discards them.
// Read and synchronize calls are counted for tests.
type Worksheet struct {
	mu        sync.Mutex
	id        string
	title     string
	committed *grid.Grid
	working   *grid.Grid

	display   map[[2]int]string
	syncs     int
	cellReads map[int]int
}

var _ types.RawWorksheet = (*Worksheet)(nil)

// NewWorksheet returns a standalone sheet seeded with rows.
func NewWorksheet(title string, rows [][]string) *Worksheet {
	g := grid.New(rows)
	return &Worksheet{
		id:        generateUUID(),
		title:     title,
		committed: g,
		working:   g.Clone(),
		display:   make(map[[2]int]string),
		cellReads: make(map[int]int),
	}
}

func (w *Worksheet) ID() string    { return w.id }
func (w *Worksheet) Title() string { return w.title }

// Cell returns the displayed working value at (row, col).
func (w *Worksheet) Cell(row, col int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cellReads[row]++
	if shown, ok := w.display[[2]int{row, col}]; ok {
		return shown, nil
	}
	return w.working.Get(row, col)
}

// SetDisplayValue makes Cell show a formatted rendering of (row, col) while
// InputValue keeps the stored literal. SetCell on the cell clears it.
func (w *Worksheet) SetDisplayValue(row, col int, shown string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.display[[2]int{row, col}] = shown
}

// InputValue returns the stored literal.
func (w *Worksheet) InputValue(row, col int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cellReads[row]++
	return w.working.Get(row, col)
}

// SetCell writes to the working copy.
func (w *Worksheet) SetCell(row, col int, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.display, [2]int{row, col})
	return w.working.Set(row, col, value)
}

// UpdateCells writes a block to the working copy.
func (w *Worksheet) UpdateCells(row, col int, values [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working.Update(row, col, values)
}

// Rows returns the working grid.
func (w *Worksheet) Rows() ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working.Rows(), nil
}

func (w *Worksheet) NumRows() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working.NumRows(), nil
}

func (w *Worksheet) NumCols() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.working.NumCols(), nil
}

// Synchronize commits the working copy.
func (w *Worksheet) Synchronize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.committed = w.working.Clone()
	w.syncs++
	return nil
}

// Reload replaces the working copy with the committed grid.
func (w *Worksheet) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.working = w.committed.Clone()
	return nil
}

// SyncCount returns how many times Synchronize ran.
func (w *Worksheet) SyncCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncs
}

// CellReads returns how many cell reads hit the given row.
func (w *Worksheet) CellReads(row int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cellReads[row]
}

// ResetCounters zeroes the read and synchronize counters.
func (w *Worksheet) ResetCounters() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncs = 0
	w.cellReads = make(map[int]int)
}

// Committed returns the committed grid, as a reader after a fresh load
// would see it.
func (w *Worksheet) Committed() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed.Rows()
}

// String renders the working grid as tab-separated lines.
func (w *Worksheet) String() string {
	rows, _ := w.Rows()
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, "\t")
	}
	return strings.Join(lines, "\n")
}
