package types

import "errors"

// RawWorksheet is the cell-level capability a backend provides for one
// sheet. Rows and columns are 1-based; row 1 holds the header.
//
// Writes may be buffered by the backend until Synchronize is called. Reload
// discards anything buffered and re-reads the sheet.
type RawWorksheet interface {
	// ID returns the backend identifier of the sheet.
	ID() string

	// Title returns the sheet's display name.
	Title() string

	// Cell returns the displayed value at (row, col). Cells beyond the
	// populated range read as "".
	Cell(row, col int) (string, error)

	// InputValue returns the unformatted value the user entered at
	// (row, col). For literal cells this equals Cell; for formulas and
	// formatted dates it is the stored literal.
	InputValue(row, col int) (string, error)

	// SetCell stages a value at (row, col).
	SetCell(row, col int, value string) error

	// UpdateCells writes a rectangular block whose top-left corner is
	// (row, col).
	UpdateCells(row, col int, values [][]string) error

	// Rows returns every populated row as displayed values, row 1 first.
	Rows() ([][]string, error)

	// NumRows returns the number of populated rows, header included.
	NumRows() (int, error)

	// NumCols returns the number of populated columns.
	NumCols() (int, error)

	// Synchronize flushes staged writes to the backing store.
	Synchronize() error

	// Reload drops staged writes and cached cells.
	Reload() error
}

// Row and schema errors.
var (
	ErrColumnNotFound             = errors.New("column not found")
	ErrAttributeAlreadyRegistered = errors.New("attribute already registered")
	ErrUnknownAttribute           = errors.New("unknown attribute")
	ErrNotAnAssociation           = errors.New("attribute is not an association")
	ErrInvalidValue               = errors.New("invalid value for attribute type")
	ErrTypeMismatch               = errors.New("type mismatch")
	ErrInvalidPosition            = errors.New("invalid row or column position")
	ErrNoResolver                 = errors.New("worksheet has no association resolver")
	ErrInvalidName                = errors.New("invalid name")
	ErrEmptyRow                   = errors.New("row has no values")
)
