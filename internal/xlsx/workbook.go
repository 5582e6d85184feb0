package xlsx

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/sheetsdb/internal/grid"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// workbook is the open excelize file behind one spreadsheet. It is opened
// on first use and shared by every worksheet of the spreadsheet.
type workbook struct {
	drive *Drive
	id    string

	mu     sync.Mutex
	file   *excelize.File
	sheets map[string]*Worksheet
}

func newWorkbook(d *Drive, id string) *workbook {
	return &workbook{drive: d, id: id, sheets: make(map[string]*Worksheet)}
}

// open returns the excelize file. The caller must hold wb.mu.
func (wb *workbook) open() (*excelize.File, error) {
	if wb.file != nil {
		return wb.file, nil
	}
	f, err := excelize.OpenFile(wb.drive.abs(wb.id))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", wb.id, err)
	}
	wb.file = f
	return f, nil
}

func (wb *workbook) close() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.file == nil {
		return nil
	}
	err := wb.file.Close()
	wb.file = nil
	return err
}

func (wb *workbook) sheet(title string) *Worksheet {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if w, ok := wb.sheets[title]; ok {
		return w
	}
	w := &Worksheet{book: wb, title: title}
	wb.sheets[title] = w
	return w
}

func (wb *workbook) hasSheet(title string) (bool, error) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	f, err := wb.open()
	if err != nil {
		return false, err
	}
	idx, err := f.GetSheetIndex(title)
	if err != nil {
		return false, err
	}
	return idx >= 0, nil
}

func (wb *workbook) addSheet(title string) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	f, err := wb.open()
	if err != nil {
		return err
	}
	idx, err := f.GetSheetIndex(title)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return fmt.Errorf("%w: worksheet %q already exists", types.ErrInvalidName, title)
	}
	if _, err := f.NewSheet(title); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidName, err)
	}
	return f.Save()
}

func (wb *workbook) sheetList() ([]string, error) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	f, err := wb.open()
	if err != nil {
		return nil, err
	}
	return f.GetSheetList(), nil
}

// Worksheet is one sheet of a workbook.
type Worksheet struct {
	book  *workbook
	title string
}

var _ types.RawWorksheet = (*Worksheet)(nil)

// ID joins the workbook path and the sheet title.
func (w *Worksheet) ID() string    { return w.book.id + "#" + w.title }
func (w *Worksheet) Title() string { return w.title }

// with runs fn on the open file while holding the workbook lock.
func (w *Worksheet) with(fn func(f *excelize.File) error) error {
	if err := w.book.drive.checkOpen(); err != nil {
		return err
	}
	w.book.mu.Lock()
	defer w.book.mu.Unlock()
	f, err := w.book.open()
	if err != nil {
		return err
	}
	return fn(f)
}

func cellName(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("%w: (%d,%d)", types.ErrInvalidPosition, row, col)
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidPosition, err)
	}
	return name, nil
}

// Cell returns the formatted value Excel would display.
func (w *Worksheet) Cell(row, col int) (string, error) {
	name, err := cellName(row, col)
	if err != nil {
		return "", err
	}
	var v string
	err = w.with(func(f *excelize.File) error {
		v, err = f.GetCellValue(w.title, name)
		return err
	})
	return v, err
}

// InputValue returns the formula as typed, with its leading "=", or the raw
// unformatted value.
func (w *Worksheet) InputValue(row, col int) (string, error) {
	name, err := cellName(row, col)
	if err != nil {
		return "", err
	}
	var v string
	err = w.with(func(f *excelize.File) error {
		formula, err := f.GetCellFormula(w.title, name)
		if err != nil {
			return err
		}
		if formula != "" {
			v = "=" + formula
			return nil
		}
		v, err = f.GetCellValue(w.title, name, excelize.Options{RawCellValue: true})
		return err
	})
	return v, err
}

// SetCell writes a string cell in the open workbook.
func (w *Worksheet) SetCell(row, col int, value string) error {
	name, err := cellName(row, col)
	if err != nil {
		return err
	}
	return w.with(func(f *excelize.File) error {
		return f.SetCellStr(w.title, name, value)
	})
}

// UpdateCells writes a block of string cells.
func (w *Worksheet) UpdateCells(row, col int, values [][]string) error {
	if _, err := cellName(row, col); err != nil {
		return err
	}
	return w.with(func(f *excelize.File) error {
		for i, line := range values {
			for j, v := range line {
				name, err := cellName(row+i, col+j)
				if err != nil {
					return err
				}
				if err := f.SetCellStr(w.title, name, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// table reads the sheet into a grid so trailing blanks are trimmed the same
// way as other backends.
func (w *Worksheet) table() (*grid.Grid, error) {
	var rows [][]string
	err := w.with(func(f *excelize.File) error {
		var err error
		rows, err = f.GetRows(w.title)
		return err
	})
	if err != nil {
		return nil, err
	}
	return grid.New(rows), nil
}

func (w *Worksheet) Rows() ([][]string, error) {
	g, err := w.table()
	if err != nil {
		return nil, err
	}
	return g.Rows(), nil
}

func (w *Worksheet) NumRows() (int, error) {
	g, err := w.table()
	if err != nil {
		return 0, err
	}
	return g.NumRows(), nil
}

func (w *Worksheet) NumCols() (int, error) {
	g, err := w.table()
	if err != nil {
		return 0, err
	}
	return g.NumCols(), nil
}

// Synchronize saves the workbook.
func (w *Worksheet) Synchronize() error {
	return w.with(func(f *excelize.File) error {
		if err := f.Save(); err != nil {
			return fmt.Errorf("save %s: %w", w.book.id, err)
		}
		w.book.drive.logger.Debug("saved workbook", "spreadsheet", w.book.id, "worksheet", w.title)
		return nil
	})
}

// Reload closes the workbook so the next access reads it from disk.
func (w *Worksheet) Reload() error {
	if err := w.book.drive.checkOpen(); err != nil {
		return err
	}
	return w.book.close()
}
