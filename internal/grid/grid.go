// Package grid holds the in-memory cell matrix shared by the backends.
package grid

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Grid is a sparse-at-the-edges matrix of cell strings addressed 1-based.
// Trailing empty rows and columns do not count toward its size.
type Grid struct {
	cells [][]string
}

// New copies rows into a grid.
func New(rows [][]string) *Grid {
	g := &Grid{}
	g.cells = cloneRows(rows)
	return g
}

// Get returns the cell at (row, col), or "" outside the populated range.
func (g *Grid) Get(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("%w: (%d, %d)", types.ErrInvalidPosition, row, col)
	}
	if row > len(g.cells) || col > len(g.cells[row-1]) {
		return "", nil
	}
	return g.cells[row-1][col-1], nil
}

// Set writes the cell at (row, col), growing the grid as needed.
func (g *Grid) Set(row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: (%d, %d)", types.ErrInvalidPosition, row, col)
	}
	for len(g.cells) < row {
		g.cells = append(g.cells, nil)
	}
	r := g.cells[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	g.cells[row-1] = r
	return nil
}

// Update writes a block whose top-left corner is (row, col).
func (g *Grid) Update(row, col int, values [][]string) error {
	for i, line := range values {
		for j, v := range line {
			if err := g.Set(row+i, col+j, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// NumRows returns the index of the last row holding a non-empty cell.
func (g *Grid) NumRows() int {
	for i := len(g.cells); i > 0; i-- {
		if rowWidth(g.cells[i-1]) > 0 {
			return i
		}
	}
	return 0
}

// NumCols returns the index of the last column holding a non-empty cell.
func (g *Grid) NumCols() int {
	n := 0
	for _, r := range g.cells {
		n = max(n, rowWidth(r))
	}
	return n
}

// Rows returns a copy of the populated block, each row padded to NumCols.
func (g *Grid) Rows() [][]string {
	nr, nc := g.NumRows(), g.NumCols()
	out := make([][]string, nr)
	for i := range nr {
		out[i] = make([]string, nc)
		copy(out[i], g.cells[i])
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	return New(g.cells)
}

// Each calls fn for every non-empty cell.
func (g *Grid) Each(fn func(row, col int, value string)) {
	for i, r := range g.cells {
		for j, v := range r {
			if v != "" {
				fn(i+1, j+1, v)
			}
		}
	}
}

func rowWidth(r []string) int {
	for j := len(r); j > 0; j-- {
		if r[j-1] != "" {
			return j
		}
	}
	return 0
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
